package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Bogdy12/uclapi/internal/model"
	"github.com/Bogdy12/uclapi/internal/repository"
	pkgerrors "github.com/Bogdy12/uclapi/pkg/errors"
)

// ── 课程解析业务错误 ──

var (
	ErrModuleNotFound = errors.New("课程组合不存在")
)

// instanceQualifiedMinLength 带实例代码的标识（如 COMP0016-A6U-T1）长度须超过该值。
// 课程代码本身也可能含 '-'，较短的标识一律按裸课程代码处理；
// 该规则可能误判个别长课程代码，保持原样。
const instanceQualifiedMinLength = 9

// moduleIdentifier 解析后的课程标识
type moduleIdentifier struct {
	ModuleID     string
	InstanceCode string
	Qualified    bool
}

// parseModuleIdentifier 拆分 <课程代码>-<实例代码>
func parseModuleIdentifier(id string) moduleIdentifier {
	hyphen := strings.Index(id, "-")
	if hyphen < 0 || len(id) <= instanceQualifiedMinLength {
		return moduleIdentifier{ModuleID: id}
	}
	return moduleIdentifier{
		ModuleID:     id[:hyphen],
		InstanceCode: id[hyphen+1:],
		Qualified:    true,
	}
}

// ModuleResolver 将用户给出的课程标识解析为课程实例
type ModuleResolver struct {
	repo *repository.Repository
}

// NewModuleResolver 创建 ModuleResolver
func NewModuleResolver(repo *repository.Repository) *ModuleResolver {
	return &ModuleResolver{repo: repo}
}

// ResolveModules 解析一批课程标识，任一标识失败即整体返回 ErrModuleNotFound
//   - 裸课程代码：匹配该课程的全部实例，无任何实例视为失败
//   - 带实例代码：先按实例代码查 instid，再按 (课程代码, instid) 查唯一实例
func (r *ModuleResolver) ResolveModules(ctx context.Context, identifiers []string) ([]model.Module, error) {
	var modules []model.Module
	for _, raw := range identifiers {
		id := parseModuleIdentifier(raw)

		if !id.Qualified {
			found, err := r.repo.Module.ListByModuleID(ctx, id.ModuleID)
			if err != nil {
				return nil, fmt.Errorf("查询课程 %s 失败: %w", id.ModuleID, err)
			}
			if len(found) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, raw)
			}
			modules = append(modules, found...)
			continue
		}

		inst, err := r.repo.Module.FindInstanceByCode(ctx, id.InstanceCode)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, raw)
			}
			return nil, fmt.Errorf("查询实例代码 %s 失败: %w", id.InstanceCode, err)
		}
		module, err := r.repo.Module.Get(ctx, id.ModuleID, inst.InstID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, raw)
			}
			return nil, fmt.Errorf("查询课程 %s 失败: %w", raw, err)
		}
		modules = append(modules, *module)
	}
	return modules, nil
}
