package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// LecturerRepository 讲师数据访问接口
type LecturerRepository interface {
	GetByID(ctx context.Context, upi string) (*model.Lecturer, error)
}

type lecturerRepo struct {
	genTable
}

// NewLecturerRepo 创建 LecturerRepository 实例
func NewLecturerRepo(db *gorm.DB, resolver dataset.Resolver) LecturerRepository {
	return &lecturerRepo{genTable{db: db, resolver: resolver}}
}

func (r *lecturerRepo) GetByID(ctx context.Context, upi string) (*model.Lecturer, error) {
	q, err := r.scoped(ctx, dataset.EntityLecturer)
	if err != nil {
		return nil, err
	}
	var lecturer model.Lecturer
	if err := q.Where("lecturerid = ?", upi).Take(&lecturer).Error; err != nil {
		return nil, err
	}
	return &lecturer, nil
}
