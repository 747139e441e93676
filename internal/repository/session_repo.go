package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

// SessionRepository 排课时段与房间预订数据访问接口
type SessionRepository interface {
	ListByModule(ctx context.Context, moduleID string, instID int64) ([]model.Session, error)
	// ListBookings 列出某排课时段的全部预订记录
	ListBookings(ctx context.Context, slotID int64) ([]model.Booking, error)
}

type sessionRepo struct {
	genTable
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB, resolver dataset.Resolver) SessionRepository {
	return &sessionRepo{genTable{db: db, resolver: resolver}}
}

func (r *sessionRepo) ListByModule(ctx context.Context, moduleID string, instID int64) ([]model.Session, error) {
	q, err := r.scoped(ctx, dataset.EntitySession)
	if err != nil {
		return nil, err
	}
	var sessions []model.Session
	err = q.Where("moduleid = ? AND instid = ?", moduleID, instID).
		Order("slotid ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) ListBookings(ctx context.Context, slotID int64) ([]model.Booking, error) {
	q, err := r.scoped(ctx, dataset.EntityBookingOverride)
	if err != nil {
		return nil, err
	}
	var bookings []model.Booking
	err = q.Where("slotid = ?", slotID).
		Order("startdatetime ASC").
		Find(&bookings).Error
	return bookings, err
}
