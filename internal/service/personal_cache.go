package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

// ── 个人课表缓存业务错误 ──

var (
	ErrTimetableBuildFailed = errors.New("生成个人课表失败")
)

// personalKeyPrefix 个人课表缓存键前缀
const personalKeyPrefix = "timetable:personal:"

// PersonalCacheKey 学生 ID → 缓存键
func PersonalCacheKey(studentID string) string {
	return personalKeyPrefix + studentID
}

// TimetableStore 个人课表缓存存储（Redis）
type TimetableStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// PopulationQueue 异步写缓存队列；队列满时返回 false，不阻塞
type PopulationQueue interface {
	Submit(studentID string, events dto.DateKeyedEvents) bool
}

// PersonalTimetableBuilder 生成某学生完整课表
type PersonalTimetableBuilder interface {
	BuildPersonalTimetable(ctx context.Context, studentID string) (dto.DateKeyedEvents, error)
}

// PersonalTimetableCache 个人课表读穿缓存
//
// 设计说明：
//   - 命中：反序列化后返回，可按日期过滤
//   - 未命中：同步生成并立即返回，再把结果投递到写缓存队列
//   - 同一学生并发未命中会各自生成并各自写入，以后写入者为准；
//     同一代数据集下生成结果确定，因此可接受
//   - store 为 nil 时每次都直接生成
type PersonalTimetableCache struct {
	store   TimetableStore
	queue   PopulationQueue
	builder PersonalTimetableBuilder
	logger  *zap.Logger
}

// NewPersonalTimetableCache 创建 PersonalTimetableCache
func NewPersonalTimetableCache(
	store TimetableStore,
	queue PopulationQueue,
	builder PersonalTimetableBuilder,
	logger *zap.Logger,
) *PersonalTimetableCache {
	return &PersonalTimetableCache{
		store:   store,
		queue:   queue,
		builder: builder,
		logger:  logger,
	}
}

// GetTimetable 读取个人课表；dateFilter 为空时返回全部日期
func (c *PersonalTimetableCache) GetTimetable(ctx context.Context, studentID, dateFilter string) (dto.DateKeyedEvents, error) {
	events, hit := c.lookup(ctx, studentID)
	if !hit {
		built, err := c.builder.BuildPersonalTimetable(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimetableBuildFailed, err)
		}
		events = built
		if c.store != nil && c.queue != nil {
			if !c.queue.Submit(studentID, events) {
				c.logger.Warn("个人课表写缓存任务被丢弃", zap.String("student_id", studentID))
			}
		}
	}

	if dateFilter != "" {
		return events.FilterDate(dateFilter), nil
	}
	return events, nil
}

// lookup 读取缓存；读取或解码失败按未命中处理
func (c *PersonalTimetableCache) lookup(ctx context.Context, studentID string) (dto.DateKeyedEvents, bool) {
	if c.store == nil {
		return nil, false
	}
	key := PersonalCacheKey(studentID)
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("读取个人课表缓存失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	events := dto.DateKeyedEvents{}
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		c.logger.Warn("个人课表缓存解码失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return events, true
}
