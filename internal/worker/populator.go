package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

// ── 个人课表异步写缓存 ─────────────────────────────────────
//
// 设计说明：
//   - 有界队列 + 固定数量 worker；Submit 从不阻塞，队列满时丢弃并告警
//   - 写入失败只记日志，不重试；下次未命中会重新生成
//   - 单个任务 panic 不影响 worker
//   - Stop 关闭队列并等待已入队任务写完
// ─────────────────────────────────────────────────────────────

const storeTimeout = 5 * time.Second

// Store 缓存写入端
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Job 一次写缓存任务
type Job struct {
	StudentID string
	Events    dto.DateKeyedEvents
}

// Stats 队列运行统计
type Stats struct {
	Stored  int64 `json:"stored"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// Populator 个人课表写缓存 worker 池
type Populator struct {
	store   Store
	keyFn   func(studentID string) string
	ttl     time.Duration
	workers int
	logger  *zap.Logger

	queue chan Job
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	stored  atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewPopulator 创建 Populator；keyFn 将学生 ID 映射为缓存键
func NewPopulator(store Store, keyFn func(string) string, ttl time.Duration, workers, queueSize int, logger *zap.Logger) *Populator {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Populator{
		store:   store,
		keyFn:   keyFn,
		ttl:     ttl,
		workers: workers,
		logger:  logger.Named("populator"),
		queue:   make(chan Job, queueSize),
	}
}

// Start 启动 worker；重复调用无效果
func (p *Populator) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.logger.Info("写缓存 worker 已启动", zap.Int("workers", p.workers), zap.Int("queue_size", cap(p.queue)))
}

// Submit 投递任务；队列已满或已停止时返回 false
func (p *Populator) Submit(studentID string, events dto.DateKeyedEvents) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.dropped.Add(1)
		return false
	}

	select {
	case p.queue <- Job{StudentID: studentID, Events: events}:
		return true
	default:
		p.dropped.Add(1)
		p.logger.Warn("写缓存队列已满，丢弃任务", zap.String("student_id", studentID))
		return false
	}
}

// Stop 停止接收新任务并等待队列清空
func (p *Populator) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return
	}
	p.wg.Wait()
	s := p.Stats()
	p.logger.Info("写缓存 worker 已停止",
		zap.Int64("stored", s.Stored),
		zap.Int64("failed", s.Failed),
		zap.Int64("dropped", s.Dropped),
	)
}

// Stats 返回运行统计
func (p *Populator) Stats() Stats {
	return Stats{
		Stored:  p.stored.Load(),
		Failed:  p.failed.Load(),
		Dropped: p.dropped.Load(),
	}
}

func (p *Populator) run(ctx context.Context, id int) {
	defer p.wg.Done()
	// ctx 取消后仍继续消费，直到 Stop 关闭队列，保证已入队任务写完
	for job := range p.queue {
		p.handle(ctx, id, job)
	}
}

func (p *Populator) handle(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.logger.Error("写缓存任务 panic",
				zap.Int("worker", id),
				zap.String("student_id", job.StudentID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := p.persist(ctx, job); err != nil {
		p.failed.Add(1)
		p.logger.Warn("写入个人课表缓存失败",
			zap.Int("worker", id),
			zap.String("student_id", job.StudentID),
			zap.Error(err),
		)
		return
	}
	p.stored.Add(1)
}

func (p *Populator) persist(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job.Events)
	if err != nil {
		return fmt.Errorf("序列化个人课表失败: %w", err)
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	return p.store.Set(storeCtx, p.keyFn(job.StudentID), string(raw), p.ttl)
}
