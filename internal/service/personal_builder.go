package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/internal/repository"
	pkgerrors "github.com/Bogdy12/uclapi/pkg/errors"
)

// StudentModuleBuilder 基于学生选课关联生成个人课表
// 选课记录携带分组代码，用于只展开学生所在的实验/小班
type StudentModuleBuilder struct {
	repo      *repository.Repository
	assembler *EventAssembler
	logger    *zap.Logger
}

// NewStudentModuleBuilder 创建 StudentModuleBuilder
func NewStudentModuleBuilder(repo *repository.Repository, assembler *EventAssembler, logger *zap.Logger) *StudentModuleBuilder {
	return &StudentModuleBuilder{repo: repo, assembler: assembler, logger: logger}
}

// BuildPersonalTimetable 实现 PersonalTimetableBuilder
func (b *StudentModuleBuilder) BuildPersonalTimetable(ctx context.Context, studentID string) (dto.DateKeyedEvents, error) {
	links, err := b.repo.StudentModule.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("查询学生 %s 选课失败: %w", studentID, err)
	}

	selectors := make([]ModuleSelector, 0, len(links))
	for _, link := range links {
		module, err := b.repo.Module.Get(ctx, link.ModuleID, link.InstID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				// 选课表与课程表由 ETL 分别写入，偶有不一致
				b.logger.Warn("选课记录指向不存在的课程实例",
					zap.String("student_id", studentID),
					zap.String("module_id", link.ModuleID),
					zap.Int64("instid", link.InstID),
				)
				continue
			}
			return nil, fmt.Errorf("查询课程 %s/%d 失败: %w", link.ModuleID, link.InstID, err)
		}
		selectors = append(selectors, ModuleSelector{Module: *module, GroupCode: link.GroupCode})
	}

	return b.assembler.AssembleEvents(ctx, selectors)
}
