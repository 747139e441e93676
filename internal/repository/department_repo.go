package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	GetByID(ctx context.Context, deptID string) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	genTable
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB, resolver dataset.Resolver) DepartmentRepository {
	return &departmentRepo{genTable{db: db, resolver: resolver}}
}

func (r *departmentRepo) GetByID(ctx context.Context, deptID string) (*model.Department, error) {
	q, err := r.scoped(ctx, dataset.EntityDepartment)
	if err != nil {
		return nil, err
	}
	var dept model.Department
	if err := q.Where("deptid = ?", deptID).Take(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	q, err := r.scoped(ctx, dataset.EntityDepartment)
	if err != nil {
		return nil, err
	}
	var depts []model.Department
	err = q.Order("deptid ASC").Find(&depts).Error
	return depts, err
}
