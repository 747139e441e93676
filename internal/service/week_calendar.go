package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/repository"
)

// WeekMaps 一次加载得到的周历快照，创建后只读
type WeekMaps struct {
	Generation dataset.Generation

	startDate map[int]time.Time // 周次 → 该周周一
	weeks     map[string][]int  // 周模式 → 周次列表
}

// DatesFor 返回某周模式下，每个周次中第 weekday 天（1=周一）的日期
// 未知周模式返回空切片；缺少起始日期的周次被跳过
func (m *WeekMaps) DatesFor(weekID string, weekday int) []time.Time {
	if m == nil {
		return []time.Time{}
	}
	numbers := m.weeks[weekID]
	dates := make([]time.Time, 0, len(numbers))
	for _, n := range numbers {
		start, ok := m.startDate[n]
		if !ok {
			continue
		}
		dates = append(dates, start.AddDate(0, 0, weekday-1))
	}
	return dates
}

// WeekCalendar 周模式 → 周次 → 日期 映射
//
// 每个数据集代各保存一份快照，首次使用时整表加载，直到 Invalidate。
// 调用方在一次解析中只使用 EnsureLoaded 返回的快照，Invalidate 不影响已取出的快照。
// Invalidate 期间仍在进行的加载结果只返回给调用方，不写回。
type WeekCalendar struct {
	repo   repository.WeekRepository
	scope  cacheScope
	logger *zap.Logger

	loadMu sync.Mutex // 串行化加载

	mu    sync.RWMutex
	maps  map[dataset.Generation]*WeekMaps
	epoch uint64
}

// NewWeekCalendar 创建 WeekCalendar；reader 为 nil 时不区分数据集代
func NewWeekCalendar(repo repository.WeekRepository, reader GenerationReader, logger *zap.Logger) *WeekCalendar {
	return &WeekCalendar{
		repo:   repo,
		scope:  cacheScope{reader: reader},
		logger: logger,
		maps:   make(map[dataset.Generation]*WeekMaps),
	}
}

func (c *WeekCalendar) cached(gen dataset.Generation) (*WeekMaps, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maps[gen], c.epoch
}

// EnsureLoaded 返回调用方所属代的周历快照，未加载时读取两张周表
func (c *WeekCalendar) EnsureLoaded(ctx context.Context) (*WeekMaps, error) {
	gen, err := c.scope.generation(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取数据集代失败: %w", err)
	}
	if m, _ := c.cached(gen); m != nil {
		return m, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	m, epoch := c.cached(gen)
	if m != nil {
		return m, nil
	}

	structures, err := c.repo.ListStructures(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载周次日期失败: %w", err)
	}
	maps, err := c.repo.ListNumericMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载周模式失败: %w", err)
	}

	m = &WeekMaps{
		Generation: gen,
		startDate:  make(map[int]time.Time, len(structures)),
		weeks:      make(map[string][]int),
	}
	for _, w := range structures {
		m.startDate[w.WeekNumber] = w.StartDate
	}
	for _, wm := range maps {
		m.weeks[wm.WeekID] = append(m.weeks[wm.WeekID], wm.WeekNumber)
	}

	c.mu.Lock()
	stored := c.epoch == epoch
	if stored {
		c.maps[gen] = m
	}
	c.mu.Unlock()

	c.logger.Info("周历加载完成",
		zap.String("generation", string(gen)),
		zap.Int("week_numbers", len(m.startDate)),
		zap.Int("week_ids", len(m.weeks)),
		zap.Bool("stored", stored),
	)
	return m, nil
}

// Invalidate 丢弃全部快照，下次 EnsureLoaded 重新读取
func (c *WeekCalendar) Invalidate() {
	c.mu.Lock()
	c.maps = make(map[dataset.Generation]*WeekMaps)
	c.epoch++
	c.mu.Unlock()
}

// Loaded 是否存在已加载的快照
func (c *WeekCalendar) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps) > 0
}
