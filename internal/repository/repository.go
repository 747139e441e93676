package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
)

// Repository 所有 Repository 的聚合入口
// 除 Lock 外，所有查询均经由 Selector 解析到当前生效代的表
type Repository struct {
	Lock          LockRepository
	Selector      *dataset.Selector
	Week          WeekRepository
	Department    DepartmentRepository
	Lecturer      LecturerRepository
	Location      LocationRepository
	Module        ModuleRepository
	Session       SessionRepository
	StudentModule StudentModuleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	lock := NewLockRepo(db)
	sel := dataset.NewSelector(lock)
	return &Repository{
		Lock:          lock,
		Selector:      sel,
		Week:          NewWeekRepo(db, sel),
		Department:    NewDepartmentRepo(db, sel),
		Lecturer:      NewLecturerRepo(db, sel),
		Location:      NewLocationRepo(db, sel),
		Module:        NewModuleRepo(db, sel),
		Session:       NewSessionRepo(db, sel),
		StudentModule: NewStudentModuleRepo(db, sel),
	}
}

// genTable 按实体解析出当前代的表并绑定 context
type genTable struct {
	db       *gorm.DB
	resolver dataset.Resolver
}

func (g genTable) scoped(ctx context.Context, entity dataset.Entity) (*gorm.DB, error) {
	h, err := g.resolver.Resolve(ctx, entity)
	if err != nil {
		return nil, err
	}
	return g.db.WithContext(ctx).Table(h.Table), nil
}
