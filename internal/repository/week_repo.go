package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// WeekRepository 周次数据访问接口
type WeekRepository interface {
	// ListStructures 全部周次及其起始日期
	ListStructures(ctx context.Context) ([]model.WeekStructure, error)
	// ListNumericMaps 全部周模式 → 周次映射
	ListNumericMaps(ctx context.Context) ([]model.WeekMapNumeric, error)
}

type weekRepo struct {
	genTable
}

// NewWeekRepo 创建 WeekRepository 实例
func NewWeekRepo(db *gorm.DB, resolver dataset.Resolver) WeekRepository {
	return &weekRepo{genTable{db: db, resolver: resolver}}
}

func (r *weekRepo) ListStructures(ctx context.Context) ([]model.WeekStructure, error) {
	q, err := r.scoped(ctx, dataset.EntityWeekStructure)
	if err != nil {
		return nil, err
	}
	var weeks []model.WeekStructure
	err = q.Order("weeknumber ASC").Find(&weeks).Error
	return weeks, err
}

func (r *weekRepo) ListNumericMaps(ctx context.Context) ([]model.WeekMapNumeric, error) {
	q, err := r.scoped(ctx, dataset.EntityWeekNumber)
	if err != nil {
		return nil, err
	}
	var maps []model.WeekMapNumeric
	err = q.Order("weekid ASC, weeknumber ASC").Find(&maps).Error
	return maps, err
}
