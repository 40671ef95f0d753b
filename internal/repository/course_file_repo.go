package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
)

// CourseFileRepository 课程文件元数据访问接口
type CourseFileRepository interface {
	Create(ctx context.Context, file *model.CourseFile) error
	GetByID(ctx context.Context, id string) (*model.CourseFile, error)
	List(ctx context.Context) ([]model.CourseFile, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.CourseFile, error)
	// IncrementDownloadCount 将下载计数原子加一（尽力而为，与内容读取不要求原子）
	IncrementDownloadCount(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

// courseFileRepo CourseFileRepository 的 GORM 实现
type courseFileRepo struct {
	db *gorm.DB
}

// NewCourseFileRepo 创建 CourseFileRepository 实例
func NewCourseFileRepo(db *gorm.DB) CourseFileRepository {
	return &courseFileRepo{db: db}
}

func (r *courseFileRepo) Create(ctx context.Context, file *model.CourseFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *courseFileRepo) GetByID(ctx context.Context, id string) (*model.CourseFile, error) {
	var file model.CourseFile
	err := r.db.WithContext(ctx).
		Where("file_id = ?", id).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *courseFileRepo) List(ctx context.Context) ([]model.CourseFile, error) {
	var files []model.CourseFile
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *courseFileRepo) ListByCourse(ctx context.Context, courseID string) ([]model.CourseFile, error) {
	var files []model.CourseFile
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *courseFileRepo) IncrementDownloadCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.CourseFile{}).
		Where("file_id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *courseFileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("file_id = ?", id).
		Delete(&model.CourseFile{}).Error
}

func (r *courseFileRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.CourseFile{}).Error
}
