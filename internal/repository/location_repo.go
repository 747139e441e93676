package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// LocationRepository 房间/站点数据访问接口
type LocationRepository interface {
	FindRoom(ctx context.Context, siteID, roomID string) (*model.Room, error)
	FindSite(ctx context.Context, siteID string) (*model.Site, error)
}

type locationRepo struct {
	genTable
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB, resolver dataset.Resolver) LocationRepository {
	return &locationRepo{genTable{db: db, resolver: resolver}}
}

func (r *locationRepo) FindRoom(ctx context.Context, siteID, roomID string) (*model.Room, error) {
	q, err := r.scoped(ctx, dataset.EntityRoom)
	if err != nil {
		return nil, err
	}
	var room model.Room
	err = q.Where("siteid = ? AND roomid = ?", siteID, roomID).Take(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *locationRepo) FindSite(ctx context.Context, siteID string) (*model.Site, error) {
	q, err := r.scoped(ctx, dataset.EntitySite)
	if err != nil {
		return nil, err
	}
	var site model.Site
	if err := q.Where("siteid = ?", siteID).Take(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}
