package dto

// ── 作业模块 DTO ──

// CreateAssignmentRequest 创建作业请求
// 标题与描述为空时校验直接拦截保存
type CreateAssignmentRequest struct {
	Title       string  `json:"title"       binding:"required,min=1,max=255"`
	Description string  `json:"description" binding:"required,min=1"`
	Deadline    *string `json:"deadline"` // RFC3339，可空
}

// UpdateAssignmentRequest 更新作业请求（字段级补丁）
type UpdateAssignmentRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Deadline    *string `json:"deadline"`
}

// AssignmentResponse 作业信息响应
type AssignmentResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
