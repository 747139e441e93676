package service

import (
	"context"
	"fmt"

	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/internal/repository"
)

// DepartmentCatalog 部门及其开设课程目录
type DepartmentCatalog struct {
	repo      *repository.Repository
	resolvers *EntityResolvers
	setID     string
}

// NewDepartmentCatalog 创建 DepartmentCatalog；setID 为当前学年数据集标识
func NewDepartmentCatalog(repo *repository.Repository, resolvers *EntityResolvers, setID string) *DepartmentCatalog {
	return &DepartmentCatalog{repo: repo, resolvers: resolvers, setID: setID}
}

// ListDepartments 全部部门，不做缓存
func (c *DepartmentCatalog) ListDepartments(ctx context.Context) ([]dto.Department, error) {
	depts, err := c.repo.Department.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询部门列表失败: %w", err)
	}
	out := make([]dto.Department, 0, len(depts))
	for _, d := range depts {
		out = append(out, dto.Department{DepartmentID: d.DeptID, Name: d.Name})
	}
	return out, nil
}

// ModulesForDepartment 部门在当前学年开设的课程，同一课程的多个实例归入同一条目
func (c *DepartmentCatalog) ModulesForDepartment(ctx context.Context, deptID string) (dto.DepartmentModules, error) {
	ctx, err := c.resolvers.scope.bind(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取数据集代失败: %w", err)
	}
	modules, err := c.repo.Module.ListByOwner(ctx, deptID, c.setID)
	if err != nil {
		return nil, fmt.Errorf("查询部门 %s 课程失败: %w", deptID, err)
	}

	out := dto.DepartmentModules{}
	for _, m := range modules {
		inst, err := c.resolvers.InstanceDetails(ctx, m.InstID)
		if err != nil {
			return nil, err
		}

		entry, ok := out[m.ModuleID]
		if !ok {
			entry = dto.DepartmentModule{
				ModuleID:  m.ModuleID,
				Name:      m.Name,
				Instances: []dto.ModuleInstanceSummary{},
			}
		}
		entry.Instances = append(entry.Instances, dto.ModuleInstanceSummary{
			FullModuleID: m.ModuleID + "-" + inst.InstanceCode,
			ClassSize:    m.ClassSize,
			Delivery:     inst.Delivery,
			Periods:      inst.Periods,
			InstanceCode: inst.InstanceCode,
		})
		out[m.ModuleID] = entry
	}
	return out, nil
}
