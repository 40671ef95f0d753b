package model

// Category 课程内容分类（闭合枚举），决定文件归属的子面板
type Category string

const (
	CategoryNotes         Category = "NOTES"
	CategoryAssignments   Category = "ASSIGNMENTS/PROJECTS"
	CategoryPastQuestions Category = "PAST QUESTIONS"
)

// AllCategories 全部分类（有序，新课程三类齐备）
var AllCategories = []Category{CategoryNotes, CategoryAssignments, CategoryPastQuestions}

// ValidCategory 判断分类是否属于闭合枚举
func ValidCategory(c Category) bool {
	switch c {
	case CategoryNotes, CategoryAssignments, CategoryPastQuestions:
		return true
	}
	return false
}

// CourseFile 课程文件元数据表 — 对应 course_files
//
// FilePath 是不透明内容句柄：remote 模式下为对象存储键
// `{courseId}/{category}/{生成文件名}`；local 模式下内容内联
// （base64）存于 KV 值中，FilePath 置为 "inline"。
// 原始文件名只保留在 FileName 列，不进入存储路径。
type CourseFile struct {
	FileID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"file_id"`
	CourseID      string   `gorm:"type:uuid;not null;index"                       json:"course_id"`
	FileName      string   `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FilePath      string   `gorm:"type:varchar(512);not null"                     json:"file_path"`
	FileType      string   `gorm:"type:varchar(127);not null"                     json:"file_type"`
	FileSize      int64    `gorm:"not null"                                       json:"file_size"`
	Category      Category `gorm:"type:varchar(40);not null"                      json:"category"`
	UploadedBy    *string  `gorm:"type:uuid"                                      json:"uploaded_by,omitempty"`
	DownloadCount int64    `gorm:"not null;default:0"                             json:"download_count"`
	BaseModel

	// local 模式内联负载（base64）；remote 模式恒为空，不入列
	InlineContent string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (CourseFile) TableName() string { return "course_files" }

// [自证通过] internal/model/course_file.go
