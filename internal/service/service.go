package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/config"
	"github.com/Bogdy12/uclapi/internal/repository"
)

// Dependencies 引擎依赖的外部协作方
// Store/Queue 可为 nil（未配置 Redis 时个人课表不缓存）；Builder 为 nil 时使用选课表生成
type Dependencies struct {
	Store     TimetableStore
	Queue     PopulationQueue
	Builder   PersonalTimetableBuilder
	Coords    CoordinateLookup
	Describer InstanceDescriber
	Location  *time.Location
}

// Service 所有 Service 的聚合入口
type Service struct {
	Timetable TimetableService
	Export    ExportService
	Watcher   *GenerationWatcher

	Cache    *LookupCache
	Calendar *WeekCalendar
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Dependencies,
	logger *zap.Logger,
) *Service {
	var reader GenerationReader
	if repo.Selector != nil {
		reader = repo.Selector
	}

	cache := NewLookupCache()
	calendar := NewWeekCalendar(repo.Week, reader, logger)
	resolvers := NewEntityResolvers(repo, cache, reader, deps.Coords, deps.Describer, cfg.Timetable.EmailDomain, logger)
	assembler := NewEventAssembler(repo, calendar, resolvers, deps.Location, logger)

	builder := deps.Builder
	if builder == nil {
		builder = NewStudentModuleBuilder(repo, assembler, logger)
	}

	var pinner GenerationPinner
	if cfg.Timetable.PinGeneration && repo.Selector != nil {
		pinner = repo.Selector
	}

	svc := &Service{
		Timetable: NewTimetableService(
			NewPersonalTimetableCache(deps.Store, deps.Queue, builder, logger),
			NewModuleResolver(repo),
			assembler,
			NewDepartmentCatalog(repo, resolvers, cfg.Timetable.SetID),
			pinner,
			logger,
		),
		Export:   NewExportService(deps.Location, logger),
		Cache:    cache,
		Calendar: calendar,
	}
	if cfg.Timetable.GenerationWatchSpec != "" && repo.Selector != nil {
		svc.Watcher = NewGenerationWatcher(
			repo.Selector, calendar, cache,
			cfg.Timetable.GenerationWatchSpec, cfg.Timetable.InvalidateOnFlip, logger,
		)
	}
	return svc
}
