package service

import (
	"context"
	"testing"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

type stubGenerationReader struct {
	gen dataset.Generation
}

func (s *stubGenerationReader) Current(_ context.Context) (dataset.Generation, error) {
	return s.gen, nil
}

func TestGenerationWatcher_FlipInvalidates(t *testing.T) {
	f := newFixture()
	f.seed()
	ctx := context.Background()
	reader := &stubGenerationReader{gen: dataset.GenerationA}
	w := NewGenerationWatcher(reader, f.calendar, f.cache, "@every 1m", true, testLogger)

	flipped, err := w.Check(ctx)
	if err != nil || flipped {
		t.Fatalf("首次读取不应视为切换: %v %v", flipped, err)
	}

	_, _ = f.calendar.EnsureLoaded(ctx)
	_, _ = f.resolvers.InstanceDetails(ctx, 101)

	if flipped, _ := w.Check(ctx); flipped {
		t.Error("代未变化不应视为切换")
	}
	if !f.calendar.Loaded() {
		t.Error("未切换时不应清空周历")
	}

	reader.gen = dataset.GenerationB
	flipped, _ = w.Check(ctx)
	if !flipped {
		t.Fatal("A→B 应视为切换")
	}
	if f.calendar.Loaded() {
		t.Error("切换后周历应失效")
	}
	if f.cache.Stats().Instances != 0 {
		t.Error("切换后查询缓存应清空")
	}
	if w.Last() != dataset.GenerationB {
		t.Errorf("Last 期望 B, 实际 %s", w.Last())
	}
}

func TestGenerationWatcher_InvalidationDisabled(t *testing.T) {
	f := newFixture()
	f.seed()
	ctx := context.Background()
	reader := &stubGenerationReader{gen: dataset.GenerationA}
	w := NewGenerationWatcher(reader, f.calendar, f.cache, "@every 1m", false, testLogger)

	_, _ = w.Check(ctx)
	_, _ = f.calendar.EnsureLoaded(ctx)
	reader.gen = dataset.GenerationB

	if flipped, _ := w.Check(ctx); !flipped {
		t.Fatal("应检测到切换")
	}
	if !f.calendar.Loaded() {
		t.Error("关闭失效后周历应保留")
	}
}

func TestGenerationWatcher_StartStop(t *testing.T) {
	f := newFixture()
	w := NewGenerationWatcher(&stubGenerationReader{gen: dataset.GenerationA}, f.calendar, f.cache, "@every 1h", true, testLogger)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	w.Stop()
	if w.Last() != dataset.GenerationA {
		t.Errorf("Start 应记录初始代, 实际 %q", w.Last())
	}

	bad := NewGenerationWatcher(&stubGenerationReader{}, f.calendar, f.cache, "not a spec", true, testLogger)
	if err := bad.Start(context.Background()); err == nil {
		t.Error("非法 cron 表达式应返回错误")
	}
}

func TestGenerationWatcher_FlipDuringAssemblyKeepsEvents(t *testing.T) {
	f := newFixture()
	f.seed()
	ctx := context.Background()
	w := NewGenerationWatcher(f.gens, f.calendar, f.cache, "@every 1m", true, testLogger)
	_, _ = w.Check(ctx)

	flipped := false
	f.repo.Session = &hookSessionRepo{
		mockSessionRepo: f.sessions,
		hook: func() {
			if flipped {
				return
			}
			f.gens.gen = dataset.GenerationB
			flipped, _ = w.Check(ctx)
		},
	}

	events, err := f.assembler.AssembleEvents(ctx, SelectorsFor([]model.Module{f.module(101)}))
	if err != nil {
		t.Fatalf("AssembleEvents 失败: %v", err)
	}
	if !flipped {
		t.Fatal("组装过程中应检测到切换")
	}
	for _, date := range []string{"2023-10-02", "2023-10-09"} {
		if len(events[date]) != 1 {
			t.Errorf("%s 期望 1 个事件, 实际 %d", date, len(events[date]))
		}
	}
	if f.calendar.Loaded() {
		t.Error("切换后周历应保持失效，等待新代请求重新加载")
	}
}
