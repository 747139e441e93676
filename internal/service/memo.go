package service

import (
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/dto"
)

// ── 查询记忆化 ──────────────────────────────────────────────
//
// 设计说明：
//   - 每类查询一个 memo，读多写少，RWMutex 保护 map。
//   - 同一 key 的并发加载经 singleflight 合并为一次数据库查询。
//   - 只缓存查到的记录；未命中（Unknown）不缓存，下次仍会重查。
//   - 键带数据集代前缀，固定在旧代的请求只会写入旧代的条目。
//   - 缓存属于引擎实例，数据集切换后由 GenerationWatcher 调用 Reset；
//     Reset 之前开始的加载完成后不再写入。
// ─────────────────────────────────────────────────────────────

// loadFunc 加载函数：返回值、是否写入缓存、错误
type loadFunc[V any] func() (V, bool, error)

type memo[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	epoch uint64
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func newMemo[V any]() *memo[V] {
	return &memo[V]{items: make(map[string]V)}
}

func (m *memo[V]) get(gen dataset.Generation, key string, load loadFunc[V]) (V, error) {
	key = string(gen) + "|" + key

	m.mu.RLock()
	v, ok := m.items[key]
	epoch := m.epoch
	m.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		return v, nil
	}
	m.misses.Add(1)

	res, err, _ := m.group.Do(key, func() (interface{}, error) {
		val, cache, err := load()
		if err != nil {
			return val, err
		}
		if cache {
			m.mu.Lock()
			if m.epoch == epoch {
				m.items[key] = val
			}
			m.mu.Unlock()
		}
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (m *memo[V]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *memo[V]) reset() {
	m.mu.Lock()
	m.items = make(map[string]V)
	m.epoch++
	m.mu.Unlock()
}

// ── LookupCache ──

// LookupCache 引擎内所有实体查询的记忆化缓存
type LookupCache struct {
	departments *memo[DepartmentLookup]
	lecturers   *memo[LecturerLookup]
	rooms       *memo[RoomLookup]
	instances   *memo[dto.InstanceDetails]
}

// NewLookupCache 创建空缓存
func NewLookupCache() *LookupCache {
	return &LookupCache{
		departments: newMemo[DepartmentLookup](),
		lecturers:   newMemo[LecturerLookup](),
		rooms:       newMemo[RoomLookup](),
		instances:   newMemo[dto.InstanceDetails](),
	}
}

// Reset 清空全部缓存
func (c *LookupCache) Reset() {
	c.departments.reset()
	c.lecturers.reset()
	c.rooms.reset()
	c.instances.reset()
}

// CacheStats 各缓存当前条目数与累计命中情况
type CacheStats struct {
	Departments int   `json:"departments"`
	Lecturers   int   `json:"lecturers"`
	Rooms       int   `json:"rooms"`
	Instances   int   `json:"instances"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
}

// Stats 返回缓存统计
func (c *LookupCache) Stats() CacheStats {
	return CacheStats{
		Departments: c.departments.len(),
		Lecturers:   c.lecturers.len(),
		Rooms:       c.rooms.len(),
		Instances:   c.instances.len(),
		Hits: c.departments.hits.Load() + c.lecturers.hits.Load() +
			c.rooms.hits.Load() + c.instances.hits.Load(),
		Misses: c.departments.misses.Load() + c.lecturers.misses.Load() +
			c.rooms.misses.Load() + c.instances.misses.Load(),
	}
}

func instanceKey(instID int64) string {
	return strconv.FormatInt(instID, 10)
}

func roomKey(siteID, roomID string) string {
	return siteID + "___" + roomID
}
