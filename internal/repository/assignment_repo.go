package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	List(ctx context.Context) ([]model.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

// assignmentRepo AssignmentRepository 的 GORM 实现
type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) List(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.Assignment{}).Error
}
