package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// StudentModuleRepository 学生选课关联数据访问接口
type StudentModuleRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]model.StudentModule, error)
}

type studentModuleRepo struct {
	genTable
}

// NewStudentModuleRepo 创建 StudentModuleRepository 实例
func NewStudentModuleRepo(db *gorm.DB, resolver dataset.Resolver) StudentModuleRepository {
	return &studentModuleRepo{genTable{db: db, resolver: resolver}}
}

func (r *studentModuleRepo) ListByStudent(ctx context.Context, studentID string) ([]model.StudentModule, error) {
	q, err := r.scoped(ctx, dataset.EntityStudentModuleLink)
	if err != nil {
		return nil, err
	}
	var links []model.StudentModule
	err = q.Where("studentid = ?", studentID).
		Order("moduleid ASC, instid ASC, modgrpcode ASC").
		Find(&links).Error
	return links, err
}
