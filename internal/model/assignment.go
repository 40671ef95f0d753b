package model

import "time"

// Assignment 作业表 — 对应 assignments
// 每条作业归属且仅归属一门课程；更新时加盖修改时间戳
type Assignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	CourseID     string     `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Title        string     `gorm:"type:varchar(255);not null"                     json:"title"`
	Description  string     `gorm:"type:text;not null"                             json:"description"`
	Deadline     *time.Time `gorm:"type:timestamptz"                               json:"deadline,omitempty"`
	CreatedBy    *string    `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
