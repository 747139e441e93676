package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ── 数据集 A/B 代切换 ──────────────────────────────────────
//
// 设计说明：
//   - ETL 整体重写非生效的一代后翻转 timetable_lock.a，实现零停机切换。
//   - Selector 每次 Resolve 都独立读取标志，同一次解析过程可能跨越切换，
//     两代表结构一致，因此允许混读。
//   - 需要请求内一致时，调用 Pin 将读到的代固定在 context 中，
//     后续 Resolve 优先使用固定值。
// ─────────────────────────────────────────────────────────────

// ErrUnknownEntity 请求了不在已知集合中的实体名（编程错误）
var ErrUnknownEntity = errors.New("未知的数据集实体")

// Generation 数据集代
type Generation string

const (
	GenerationA Generation = "A"
	GenerationB Generation = "B"
)

// Entity 逻辑实体名
type Entity string

const (
	EntityModule            Entity = "module"
	EntitySession           Entity = "session"
	EntityWeekNumber        Entity = "weekNumber"
	EntityWeekStructure     Entity = "weekStructure"
	EntityLecturer          Entity = "lecturer"
	EntityRoom              Entity = "room"
	EntitySite              Entity = "site"
	EntityDepartment        Entity = "department"
	EntityStudentModuleLink Entity = "studentModuleLink"
	EntityModuleInstance    Entity = "moduleInstance"
	EntityBookingOverride   Entity = "bookingOverride"
)

// baseTables 实体 → 表名前缀，实际表名为 <前缀>_a / <前缀>_b
var baseTables = map[Entity]string{
	EntityModule:            "module",
	EntitySession:           "timetable",
	EntityWeekNumber:        "weekmapnumeric",
	EntityWeekStructure:     "weekstructure",
	EntityLecturer:          "lecturer",
	EntityRoom:              "rooms",
	EntitySite:              "sites",
	EntityDepartment:        "depts",
	EntityStudentModuleLink: "stumodules",
	EntityModuleInstance:    "cminstances",
	EntityBookingOverride:   "booking",
}

// Handle 某实体在某一代数据集中的表
type Handle struct {
	Entity     Entity
	Generation Generation
	Table      string
}

// HandleFor 构造指定代的实体句柄
func HandleFor(entity Entity, gen Generation) (Handle, error) {
	base, ok := baseTables[entity]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return Handle{
		Entity:     entity,
		Generation: gen,
		Table:      base + "_" + strings.ToLower(string(gen)),
	}, nil
}

// FlagReader 读取切换标志：true 表示 A 代生效
type FlagReader interface {
	GenerationALive(ctx context.Context) (bool, error)
}

// Resolver 将逻辑实体解析为当前应查询的表
type Resolver interface {
	Resolve(ctx context.Context, entity Entity) (Handle, error)
}

// Selector 基于共享标志的 A/B 选择器，可被并发调用
type Selector struct {
	flag FlagReader
}

// NewSelector 创建 Selector
func NewSelector(flag FlagReader) *Selector {
	return &Selector{flag: flag}
}

// Current 读取当前生效的代
func (s *Selector) Current(ctx context.Context) (Generation, error) {
	a, err := s.flag.GenerationALive(ctx)
	if err != nil {
		return "", fmt.Errorf("读取数据集切换标志失败: %w", err)
	}
	if a {
		return GenerationA, nil
	}
	return GenerationB, nil
}

// Resolve 返回实体在当前代中的句柄
// context 中已固定代时不再读取标志
func (s *Selector) Resolve(ctx context.Context, entity Entity) (Handle, error) {
	if _, ok := baseTables[entity]; !ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if gen, ok := PinnedFrom(ctx); ok {
		return HandleFor(entity, gen)
	}
	gen, err := s.Current(ctx)
	if err != nil {
		return Handle{}, err
	}
	return HandleFor(entity, gen)
}

// Pin 读取一次标志并固定到返回的 context 中
func (s *Selector) Pin(ctx context.Context) (context.Context, error) {
	if _, ok := PinnedFrom(ctx); ok {
		return ctx, nil
	}
	gen, err := s.Current(ctx)
	if err != nil {
		return ctx, err
	}
	return WithGeneration(ctx, gen), nil
}

// ── context 固定代 ──

type pinnedKey struct{}

// WithGeneration 在 context 中固定数据集代
func WithGeneration(ctx context.Context, gen Generation) context.Context {
	return context.WithValue(ctx, pinnedKey{}, gen)
}

// PinnedFrom 取出 context 中固定的代
func PinnedFrom(ctx context.Context) (Generation, bool) {
	gen, ok := ctx.Value(pinnedKey{}).(Generation)
	return gen, ok
}
