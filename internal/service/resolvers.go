package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/internal/repository"
	pkgerrors "github.com/Bogdy12/uclapi/pkg/errors"
)

// ── 实体解析业务错误 ──

var (
	ErrInstanceNotFound = errors.New("课程实例不存在")
)

// ── 外部依赖 ──

// CoordinateLookup 根据站点/房间查询经纬度
type CoordinateLookup interface {
	Coordinates(ctx context.Context, siteID, roomID string) (lat, lng string, err error)
}

// InstanceDescriber 根据实例代码描述开课方式与学期
type InstanceDescriber interface {
	Describe(ctx context.Context, instanceCode string) (dto.InstanceDescription, error)
}

// ── 查询结果 ──
//
// Found=false 表示记录不存在；只有在组装 EnrichedEvent 时才转换为 "Unknown"。

// DepartmentLookup 部门名称查询结果
type DepartmentLookup struct {
	Name  string
	Found bool
}

// LecturerLookup 讲师查询结果
type LecturerLookup struct {
	Name           string
	Email          string
	DepartmentID   string
	DepartmentName string
	// HasDepartment 讲师登记了所属部门
	HasDepartment bool
	Found         bool
}

// RoomLookup 房间查询结果
type RoomLookup struct {
	Location dto.Location
	Found    bool
}

// EntityResolvers 部门/讲师/房间/课程实例查询，结果经 LookupCache 记忆化
type EntityResolvers struct {
	repo        *repository.Repository
	cache       *LookupCache
	scope       cacheScope
	coords      CoordinateLookup
	describer   InstanceDescriber
	emailDomain string
	logger      *zap.Logger
}

// NewEntityResolvers 创建 EntityResolvers；reader 决定缓存条目归属的数据集代，可为 nil
func NewEntityResolvers(
	repo *repository.Repository,
	cache *LookupCache,
	reader GenerationReader,
	coords CoordinateLookup,
	describer InstanceDescriber,
	emailDomain string,
	logger *zap.Logger,
) *EntityResolvers {
	return &EntityResolvers{
		repo:        repo,
		cache:       cache,
		scope:       cacheScope{reader: reader},
		coords:      coords,
		describer:   describer,
		emailDomain: emailDomain,
		logger:      logger,
	}
}

// ────────────────────── DepartmentName ──────────────────────

// DepartmentName 部门代码 → 全称
func (r *EntityResolvers) DepartmentName(ctx context.Context, code string) (DepartmentLookup, error) {
	if code == "" {
		return DepartmentLookup{}, nil
	}
	gen, err := r.scope.generation(ctx)
	if err != nil {
		return DepartmentLookup{}, err
	}
	return r.cache.departments.get(gen, code, func() (DepartmentLookup, bool, error) {
		dept, err := r.repo.Department.GetByID(ctx, code)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return DepartmentLookup{}, false, nil
			}
			return DepartmentLookup{}, false, fmt.Errorf("查询部门 %s 失败: %w", code, err)
		}
		return DepartmentLookup{Name: dept.Name, Found: true}, true, nil
	})
}

// ────────────────────── LecturerDetails ──────────────────────

// LecturerDetails 讲师 UPI → 姓名/邮箱/所属部门
func (r *EntityResolvers) LecturerDetails(ctx context.Context, upi string) (LecturerLookup, error) {
	if upi == "" {
		return LecturerLookup{}, nil
	}
	gen, err := r.scope.generation(ctx)
	if err != nil {
		return LecturerLookup{}, err
	}
	return r.cache.lecturers.get(gen, upi, func() (LecturerLookup, bool, error) {
		lecturer, err := r.repo.Lecturer.GetByID(ctx, upi)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return LecturerLookup{}, false, nil
			}
			return LecturerLookup{}, false, fmt.Errorf("查询讲师 %s 失败: %w", upi, err)
		}

		details := LecturerLookup{
			Name:  lecturer.Name,
			Email: lecturer.LinkCode + r.emailDomain,
			Found: true,
		}
		if lecturer.Owner != "" {
			dept, err := r.DepartmentName(ctx, lecturer.Owner)
			if err != nil {
				return LecturerLookup{}, false, err
			}
			details.HasDepartment = true
			details.DepartmentID = lecturer.Owner
			details.DepartmentName = departmentNameOrUnknown(dept)
		}
		return details, true, nil
	})
}

// ────────────────────── RoomDetails ──────────────────────

// RoomDetails 站点+房间 → 地点详情；任一 ID 为空或记录不存在时 Found=false
// 坐标查询失败时坐标记为 "Unknown"，且该结果不缓存
func (r *EntityResolvers) RoomDetails(ctx context.Context, siteID, roomID string) (RoomLookup, error) {
	if siteID == "" || roomID == "" {
		return RoomLookup{}, nil
	}
	gen, err := r.scope.generation(ctx)
	if err != nil {
		return RoomLookup{}, err
	}
	return r.cache.rooms.get(gen, roomKey(siteID, roomID), func() (RoomLookup, bool, error) {
		room, err := r.repo.Location.FindRoom(ctx, siteID, roomID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return RoomLookup{}, false, nil
			}
			return RoomLookup{}, false, fmt.Errorf("查询房间 %s/%s 失败: %w", siteID, roomID, err)
		}
		site, err := r.repo.Location.FindSite(ctx, siteID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return RoomLookup{}, false, nil
			}
			return RoomLookup{}, false, fmt.Errorf("查询站点 %s 失败: %w", siteID, err)
		}

		cache := true
		lat, lng := dto.Unknown, dto.Unknown
		if r.coords != nil {
			la, ln, err := r.coords.Coordinates(ctx, siteID, roomID)
			if err != nil {
				r.logger.Warn("查询房间坐标失败",
					zap.String("site_id", siteID),
					zap.String("room_id", roomID),
					zap.Error(err),
				)
				cache = false
			} else {
				lat, lng = la, ln
			}
		}

		return RoomLookup{
			Location: dto.Location{
				Name:     room.RoomName,
				Capacity: room.Capacity,
				Type:     room.BookableType,
				Address:  []string{site.Address1, site.Address2, site.Address3, site.Address4},
				SiteName: site.SiteName,
				Coordinates: dto.Coordinates{
					Lat: lat,
					Lng: lng,
				},
			},
			Found: true,
		}, cache, nil
	})
}

// ────────────────────── InstanceDetails ──────────────────────

// InstanceDetails 实例 ID → 开课方式/学期/实例代码
// 实例描述失败时开课方式与学期留空，仍返回实例代码，该结果不缓存
func (r *EntityResolvers) InstanceDetails(ctx context.Context, instID int64) (dto.InstanceDetails, error) {
	gen, err := r.scope.generation(ctx)
	if err != nil {
		return dto.InstanceDetails{}, err
	}
	return r.cache.instances.get(gen, instanceKey(instID), func() (dto.InstanceDetails, bool, error) {
		inst, err := r.repo.Module.GetInstance(ctx, instID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return dto.InstanceDetails{}, false, fmt.Errorf("%w: instid=%d", ErrInstanceNotFound, instID)
			}
			return dto.InstanceDetails{}, false, fmt.Errorf("查询课程实例 %d 失败: %w", instID, err)
		}

		desc, err := r.describer.Describe(ctx, inst.InstCode)
		if err != nil {
			r.logger.Warn("描述课程实例失败",
				zap.Int64("instid", instID),
				zap.String("instance_code", inst.InstCode),
				zap.Error(err),
			)
			return dto.InstanceDetails{InstanceCode: inst.InstCode}, false, nil
		}
		return dto.InstanceDetails{
			Delivery:     desc.Delivery,
			Periods:      desc.Periods,
			InstanceCode: inst.InstCode,
		}, true, nil
	})
}

// ── 转换为展示值 ──

func departmentNameOrUnknown(d DepartmentLookup) string {
	if !d.Found {
		return dto.Unknown
	}
	return d.Name
}

func lecturerToDTO(l LecturerLookup) dto.Lecturer {
	out := dto.UnknownLecturer()
	if !l.Found {
		return out
	}
	out.Name = l.Name
	out.Email = l.Email
	if l.HasDepartment {
		out.DepartmentID = l.DepartmentID
		out.DepartmentName = l.DepartmentName
	}
	return out
}

func roomToDTO(r RoomLookup) dto.Location {
	if !r.Found {
		return dto.Location{}
	}
	return r.Location
}
