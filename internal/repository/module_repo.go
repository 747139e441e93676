package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// ModuleRepository 课程及课程实例数据访问接口
type ModuleRepository interface {
	Get(ctx context.Context, moduleID string, instID int64) (*model.Module, error)
	ListByModuleID(ctx context.Context, moduleID string) ([]model.Module, error)
	// ListByOwner 列出部门在指定数据集下开设的课程
	ListByOwner(ctx context.Context, deptID, setID string) ([]model.Module, error)
	GetInstance(ctx context.Context, instID int64) (*model.ModuleInstance, error)
	// FindInstanceByCode 按实例代码查找，多条时取任意一条
	FindInstanceByCode(ctx context.Context, instCode string) (*model.ModuleInstance, error)
}

type moduleRepo struct {
	genTable
}

// NewModuleRepo 创建 ModuleRepository 实例
func NewModuleRepo(db *gorm.DB, resolver dataset.Resolver) ModuleRepository {
	return &moduleRepo{genTable{db: db, resolver: resolver}}
}

func (r *moduleRepo) Get(ctx context.Context, moduleID string, instID int64) (*model.Module, error) {
	q, err := r.scoped(ctx, dataset.EntityModule)
	if err != nil {
		return nil, err
	}
	var module model.Module
	err = q.Where("moduleid = ? AND instid = ?", moduleID, instID).Take(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) ListByModuleID(ctx context.Context, moduleID string) ([]model.Module, error) {
	q, err := r.scoped(ctx, dataset.EntityModule)
	if err != nil {
		return nil, err
	}
	var modules []model.Module
	err = q.Where("moduleid = ?", moduleID).Order("instid ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) ListByOwner(ctx context.Context, deptID, setID string) ([]model.Module, error) {
	q, err := r.scoped(ctx, dataset.EntityModule)
	if err != nil {
		return nil, err
	}
	var modules []model.Module
	err = q.Where("owner = ? AND setid = ?", deptID, setID).
		Order("moduleid ASC, instid ASC").
		Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) GetInstance(ctx context.Context, instID int64) (*model.ModuleInstance, error) {
	q, err := r.scoped(ctx, dataset.EntityModuleInstance)
	if err != nil {
		return nil, err
	}
	var inst model.ModuleInstance
	if err := q.Where("instid = ?", instID).Take(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *moduleRepo) FindInstanceByCode(ctx context.Context, instCode string) (*model.ModuleInstance, error) {
	q, err := r.scoped(ctx, dataset.EntityModuleInstance)
	if err != nil {
		return nil, err
	}
	var inst model.ModuleInstance
	if err := q.Where("instcode = ?", instCode).Take(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}
