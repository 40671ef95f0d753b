package dto

// ── 课程文件模块 DTO ──

// FileResponse 文件元数据响应
type FileResponse struct {
	ID            string `json:"id"`
	CourseID      string `json:"course_id"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	FileSize      int64  `json:"file_size"`
	FileSizeHuman string `json:"file_size_human"`
	Category      string `json:"category"`
	UploadedBy    string `json:"uploaded_by,omitempty"`
	DownloadCount int64  `json:"download_count"`
	CreatedAt     string `json:"created_at"`
}

// DownloadResult 下载结果（Service → Handler）
// Content 为文件全量字节；FileName 为应还原的原始文件名
type DownloadResult struct {
	FileName string
	FileType string
	Content  []byte
}
