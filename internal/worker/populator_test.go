package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

type memStore struct {
	mu    sync.Mutex
	data  map[string]string
	ttls  map[string]time.Duration
	err   error
	block chan struct{}
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func keyFn(id string) string { return "timetable:personal:" + id }

func sampleEvents() dto.DateKeyedEvents {
	events := dto.DateKeyedEvents{}
	events.Add("2023-11-06", dto.EnrichedEvent{SessionTitle: "Lecture"})
	return events
}

func TestPopulator_StoresSubmittedJobs(t *testing.T) {
	store := newMemStore()
	p := NewPopulator(store, keyFn, time.Hour, 2, 8, zap.NewNop())
	p.Start(context.Background())

	for _, id := range []string{"abc12", "def34", "ghi56"} {
		if !p.Submit(id, sampleEvents()) {
			t.Fatalf("Submit(%s) 不应被拒绝", id)
		}
	}
	p.Stop()

	for _, id := range []string{"abc12", "def34", "ghi56"} {
		raw, ok := store.get(keyFn(id))
		if !ok {
			t.Fatalf("%s 未写入缓存", id)
		}
		var got dto.DateKeyedEvents
		if err := json.Unmarshal([]byte(raw), &got); err != nil || got.Count() != 1 {
			t.Errorf("%s 缓存内容错误: %s (%v)", id, raw, err)
		}
		if store.ttls[keyFn(id)] != time.Hour {
			t.Errorf("TTL 期望 1h, 实际 %s", store.ttls[keyFn(id)])
		}
	}
	if s := p.Stats(); s.Stored != 3 || s.Failed != 0 {
		t.Errorf("统计错误: %+v", s)
	}
}

func TestPopulator_SubmitNeverBlocks(t *testing.T) {
	store := newMemStore()
	store.block = make(chan struct{})
	p := NewPopulator(store, keyFn, 0, 1, 1, zap.NewNop())
	p.Start(context.Background())

	// worker 阻塞在第一个任务上，队列容量为 1
	accepted := 0
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			if p.Submit("abc12", sampleEvents()) {
				accepted++
			}
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit 不应阻塞")
	}
	if accepted > 2 {
		t.Errorf("队列容量 1 + 进行中 1，最多接收 2 个, 实际 %d", accepted)
	}
	if p.Stats().Dropped < 8 {
		t.Errorf("期望至少丢弃 8 个, 实际 %d", p.Stats().Dropped)
	}

	close(store.block)
	p.Stop()
}

func TestPopulator_StoreFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("redis 不可用")
	p := NewPopulator(store, keyFn, 0, 1, 4, zap.NewNop())
	p.Start(context.Background())

	p.Submit("abc12", sampleEvents())
	p.Stop()

	if s := p.Stats(); s.Failed != 1 || s.Stored != 0 {
		t.Errorf("统计错误: %+v", s)
	}
}

func TestPopulator_SubmitAfterStop(t *testing.T) {
	p := NewPopulator(newMemStore(), keyFn, 0, 1, 4, zap.NewNop())
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	if p.Submit("abc12", sampleEvents()) {
		t.Error("Stop 后 Submit 应返回 false")
	}
}
