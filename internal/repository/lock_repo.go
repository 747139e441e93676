package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/model"
)

// LockRepository A/B 切换标志数据访问接口（标志由 ETL 写入）
type LockRepository interface {
	Get(ctx context.Context) (*model.GenerationLock, error)
	// GenerationALive 实现 dataset.FlagReader
	GenerationALive(ctx context.Context) (bool, error)
}

type lockRepo struct {
	db *gorm.DB
}

// NewLockRepo 创建 LockRepository 实例
func NewLockRepo(db *gorm.DB) LockRepository {
	return &lockRepo{db: db}
}

func (r *lockRepo) Get(ctx context.Context) (*model.GenerationLock, error) {
	var lock model.GenerationLock
	err := r.db.WithContext(ctx).Take(&lock).Error
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *lockRepo) GenerationALive(ctx context.Context) (bool, error) {
	lock, err := r.Get(ctx)
	if err != nil {
		return false, err
	}
	return lock.A, nil
}
