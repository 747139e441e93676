package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

// GenerationPinner 将当前数据集代固定到 context 中
type GenerationPinner interface {
	Pin(ctx context.Context) (context.Context, error)
}

// TimetableService 课表对外业务接口
type TimetableService interface {
	// GetStudentTimetable 学生个人课表（带缓存）
	GetStudentTimetable(ctx context.Context, studentID, dateFilter string) (dto.DateKeyedEvents, error)
	// GetCustomTimetable 按课程标识组合生成课表；无法解析时返回 ErrModuleNotFound
	GetCustomTimetable(ctx context.Context, identifiers []string, dateFilter string) (dto.DateKeyedEvents, error)
	GetDepartmentalModules(ctx context.Context, departmentID string) (dto.DepartmentModules, error)
	GetDepartments(ctx context.Context) ([]dto.Department, error)
}

type timetableService struct {
	personal  *PersonalTimetableCache
	modules   *ModuleResolver
	assembler *EventAssembler
	catalog   *DepartmentCatalog
	pinner    GenerationPinner // 为 nil 时每次查询各自读取切换标志
	logger    *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(
	personal *PersonalTimetableCache,
	modules *ModuleResolver,
	assembler *EventAssembler,
	catalog *DepartmentCatalog,
	pinner GenerationPinner,
	logger *zap.Logger,
) TimetableService {
	return &timetableService{
		personal:  personal,
		modules:   modules,
		assembler: assembler,
		catalog:   catalog,
		pinner:    pinner,
		logger:    logger,
	}
}

func (s *timetableService) pin(ctx context.Context) (context.Context, error) {
	if s.pinner == nil {
		return ctx, nil
	}
	return s.pinner.Pin(ctx)
}

// ────────────────────── GetStudentTimetable ──────────────────────

func (s *timetableService) GetStudentTimetable(ctx context.Context, studentID, dateFilter string) (dto.DateKeyedEvents, error) {
	ctx, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.personal.GetTimetable(ctx, studentID, dateFilter)
	if err != nil {
		s.logger.Error("获取个人课表失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return events, nil
}

// ────────────────────── GetCustomTimetable ──────────────────────

func (s *timetableService) GetCustomTimetable(ctx context.Context, identifiers []string, dateFilter string) (dto.DateKeyedEvents, error) {
	ctx, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}

	modules, err := s.modules.ResolveModules(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	events, err := s.assembler.AssembleEvents(ctx, SelectorsFor(modules))
	if err != nil {
		s.logger.Error("组装课程事件失败", zap.Strings("modules", identifiers), zap.Error(err))
		return nil, err
	}

	if dateFilter != "" {
		return events.FilterDate(dateFilter), nil
	}
	return events, nil
}

// ────────────────────── 部门目录 ──────────────────────

func (s *timetableService) GetDepartmentalModules(ctx context.Context, departmentID string) (dto.DepartmentModules, error) {
	ctx, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := s.catalog.ModulesForDepartment(ctx, departmentID)
	if err != nil {
		s.logger.Error("获取部门课程失败", zap.String("department_id", departmentID), zap.Error(err))
		return nil, err
	}
	return modules, nil
}

func (s *timetableService) GetDepartments(ctx context.Context) ([]dto.Department, error) {
	return s.catalog.ListDepartments(ctx)
}
