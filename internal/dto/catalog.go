package dto

// ── 内容树 DTO ──

// CatalogTreeResponse 完整内容树：学年 → 学期 → 课程 → 分类
type CatalogTreeResponse struct {
	Years []CatalogYear `json:"years"`
}

// CatalogYear 学年节点
type CatalogYear struct {
	Name      string            `json:"name"`
	Semesters []CatalogSemester `json:"semesters"`
}

// CatalogSemester 学期节点（学年内唯一）
type CatalogSemester struct {
	Name    string          `json:"name"`
	Courses []CatalogCourse `json:"courses"`
}

// CatalogCourse 课程节点，分类面板三类齐备
type CatalogCourse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Units       int                  `json:"units"`
	Categories  []CatalogCategory    `json:"categories"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// CatalogCategory 分类面板，含该类下全部文件
type CatalogCategory struct {
	Name  string         `json:"name"`
	Files []FileResponse `json:"files"`
}
