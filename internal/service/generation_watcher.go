package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dataset"
)

// GenerationReader 读取当前生效的数据集代
type GenerationReader interface {
	Current(ctx context.Context) (dataset.Generation, error)
}

// GenerationWatcher 定时巡检 A/B 切换标志
// 发现切换后清空周历与查询缓存，使后续请求读取新一代数据
type GenerationWatcher struct {
	cron       *cron.Cron
	reader     GenerationReader
	calendar   *WeekCalendar
	cache      *LookupCache
	spec       string
	invalidate bool
	logger     *zap.Logger

	mu   sync.Mutex
	last dataset.Generation
}

// NewGenerationWatcher 创建 GenerationWatcher；spec 为 robfig/cron 表达式
func NewGenerationWatcher(
	reader GenerationReader,
	calendar *WeekCalendar,
	cache *LookupCache,
	spec string,
	invalidate bool,
	logger *zap.Logger,
) *GenerationWatcher {
	return &GenerationWatcher{
		cron:       cron.New(),
		reader:     reader,
		calendar:   calendar,
		cache:      cache,
		spec:       spec,
		invalidate: invalidate,
		logger:     logger,
	}
}

// Start 记录当前代并启动定时任务
func (w *GenerationWatcher) Start(ctx context.Context) error {
	if _, err := w.Check(ctx); err != nil {
		w.logger.Warn("读取初始数据集代失败", zap.Error(err))
	}

	_, err := w.cron.AddFunc(w.spec, func() {
		checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := w.Check(checkCtx); err != nil {
			w.logger.Warn("巡检数据集切换标志失败", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("数据集切换巡检已启动", zap.String("spec", w.spec))
	return nil
}

// Stop 停止定时任务并等待运行中的巡检结束
func (w *GenerationWatcher) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("数据集切换巡检已停止")
}

// Check 读取一次标志；与上次记录不同则视为切换，返回 true
// 首次读取只记录，不视为切换
func (w *GenerationWatcher) Check(ctx context.Context) (bool, error) {
	gen, err := w.reader.Current(ctx)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	prev := w.last
	w.last = gen
	w.mu.Unlock()

	if prev == "" || prev == gen {
		return false, nil
	}

	w.logger.Info("检测到数据集切换",
		zap.String("from", string(prev)),
		zap.String("to", string(gen)),
	)
	if w.invalidate {
		w.calendar.Invalidate()
		w.cache.Reset()
	}
	return true, nil
}

// Last 最近一次读到的代
func (w *GenerationWatcher) Last() dataset.Generation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
