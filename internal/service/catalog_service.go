package service

import (
	"context"
	"time"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/pkg/filesize"
)

// CatalogService 内容树与同步状态查询
//
// 数据全部来自内存镜像，不直接落库查询，保证目录页在
// 数据源抖动时仍可渲染最近一次成功快照。
type CatalogService interface {
	GetTree(ctx context.Context) (*dto.CatalogTreeResponse, error)
	GetUpdateStatus(ctx context.Context) *dto.UpdateStatusResponse
}

type catalogService struct {
	mirror *realtime.Mirror
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(mirror *realtime.Mirror) CatalogService {
	return &catalogService{mirror: mirror}
}

// ────────────────────── GetTree ──────────────────────

// GetTree 组装 学年 → 学期 → 课程 → 分类 四层目录树。
// 学年与学期顺序固定，不随数据内容变化。
func (s *catalogService) GetTree(_ context.Context) (*dto.CatalogTreeResponse, error) {
	snap := s.mirror.Snapshot()

	// 按 (学年, 学期) 预分桶
	buckets := make(map[string][]model.Course)
	for _, c := range snap.Courses {
		key := c.YearName + "|" + c.SemesterName
		buckets[key] = append(buckets[key], c)
	}

	filesByCourse := make(map[string][]model.CourseFile)
	for _, f := range snap.Files {
		filesByCourse[f.CourseID] = append(filesByCourse[f.CourseID], f)
	}
	assignmentsByCourse := make(map[string][]model.Assignment)
	for _, a := range snap.Assignments {
		assignmentsByCourse[a.CourseID] = append(assignmentsByCourse[a.CourseID], a)
	}

	tree := &dto.CatalogTreeResponse{Years: make([]dto.CatalogYear, 0, len(model.YearNames))}
	for _, year := range model.YearNames {
		y := dto.CatalogYear{Name: year, Semesters: make([]dto.CatalogSemester, 0, len(model.SemesterNames))}
		for _, semester := range model.SemesterNames {
			sem := dto.CatalogSemester{Name: semester}
			for _, c := range buckets[year+"|"+semester] {
				sem.Courses = append(sem.Courses, s.buildCourse(c, filesByCourse[c.CourseID], assignmentsByCourse[c.CourseID]))
			}
			y.Semesters = append(y.Semesters, sem)
		}
		tree.Years = append(tree.Years, y)
	}
	return tree, nil
}

// buildCourse 每门课程固定渲染全部三个分类面板，无文件时为空列表
func (s *catalogService) buildCourse(c model.Course, files []model.CourseFile, assignments []model.Assignment) dto.CatalogCourse {
	course := dto.CatalogCourse{
		ID:          c.CourseID,
		Title:       c.Title,
		Units:       c.Units,
		Categories:  make([]dto.CatalogCategory, 0, len(model.AllCategories)),
		Assignments: []dto.AssignmentResponse{},
	}

	byCategory := make(map[model.Category][]dto.FileResponse)
	for _, f := range files {
		byCategory[f.Category] = append(byCategory[f.Category], toFileResponse(&f))
	}
	for _, cat := range model.AllCategories {
		panel := dto.CatalogCategory{Name: string(cat), Files: byCategory[cat]}
		if panel.Files == nil {
			panel.Files = []dto.FileResponse{}
		}
		course.Categories = append(course.Categories, panel)
	}

	for _, a := range assignments {
		course.Assignments = append(course.Assignments, toAssignmentResponse(&a))
	}
	return course
}

// ────────────────────── GetUpdateStatus ──────────────────────

func (s *catalogService) GetUpdateStatus(_ context.Context) *dto.UpdateStatusResponse {
	connected, lastUpdate := s.mirror.Status()
	resp := &dto.UpdateStatusResponse{Connected: connected}
	if !lastUpdate.IsZero() {
		resp.LastUpdate = lastUpdate.Format(time.RFC3339)
	}
	return resp
}

// ── 共享转换函数 ──

func toFileResponse(f *model.CourseFile) dto.FileResponse {
	resp := dto.FileResponse{
		ID:            f.FileID,
		CourseID:      f.CourseID,
		FileName:      f.FileName,
		FileType:      f.FileType,
		FileSize:      f.FileSize,
		FileSizeHuman: filesize.Format(f.FileSize),
		Category:      string(f.Category),
		DownloadCount: f.DownloadCount,
		CreatedAt:     f.CreatedAt.Format(time.RFC3339),
	}
	if f.UploadedBy != nil {
		resp.UploadedBy = *f.UploadedBy
	}
	return resp
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:          a.AssignmentID,
		CourseID:    a.CourseID,
		Title:       a.Title,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Deadline != nil {
		resp.Deadline = a.Deadline.Format(time.RFC3339)
	}
	if a.CreatedBy != nil {
		resp.CreatedBy = *a.CreatedBy
	}
	return resp
}
