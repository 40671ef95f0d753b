package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
// units 省略时默认 3
type CreateCourseRequest struct {
	Title        string `json:"title"         binding:"required,min=1,max=255"`
	YearName     string `json:"year_name"     binding:"required"`
	SemesterName string `json:"semester_name" binding:"required"`
	Units        *int   `json:"units"         binding:"omitempty,min=1,max=12"`
}

// UpdateCourseRequest 更新课程请求（字段级补丁）
type UpdateCourseRequest struct {
	Title      *string `json:"title"       binding:"omitempty,min=1,max=255"`
	Units      *int    `json:"units"       binding:"omitempty,min=1,max=12"`
	LecturerID *string `json:"lecturer_id" binding:"omitempty,uuid"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	YearName     string   `json:"year_name"`
	SemesterName string   `json:"semester_name"`
	Units        int      `json:"units"`
	LecturerID   *string  `json:"lecturer_id,omitempty"`
	Categories   []string `json:"categories"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}
