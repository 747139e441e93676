package service

import (
	"context"
	"testing"
	"time"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/model"
)

func TestWeekCalendar_UnknownWeekIDIsEmpty(t *testing.T) {
	f := newFixture()
	f.seed()
	weeks, err := f.calendar.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("EnsureLoaded 失败: %v", err)
	}

	for _, weekday := range []int{1, 3, 7} {
		dates := weeks.DatesFor("NOPE", weekday)
		if dates == nil || len(dates) != 0 {
			t.Errorf("未知周模式期望空切片, 实际 %v", dates)
		}
	}
}

func TestWeekCalendar_DatesFor(t *testing.T) {
	f := newFixture()
	f.seed()
	weeks, _ := f.calendar.EnsureLoaded(context.Background())

	dates := weeks.DatesFor("W1", 3)
	want := []time.Time{monday(2023, 10, 4), monday(2023, 10, 11)}
	if len(dates) != len(want) {
		t.Fatalf("期望 %d 个日期, 实际 %d", len(want), len(dates))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("第 %d 个日期期望 %s, 实际 %s", i, want[i], dates[i])
		}
	}
	if weeks.Generation != dataset.GenerationA {
		t.Errorf("快照应标记加载时的代, 实际 %q", weeks.Generation)
	}
}

func TestWeekCalendar_SkipsWeekWithoutStartDate(t *testing.T) {
	f := newFixture()
	f.seed()
	f.weeks.mapWeek("W2", 2, 40)
	weeks, _ := f.calendar.EnsureLoaded(context.Background())

	dates := weeks.DatesFor("W2", 1)
	if len(dates) != 1 || !dates[0].Equal(monday(2023, 10, 9)) {
		t.Errorf("缺少起始日期的周次应被跳过, 实际 %v", dates)
	}
}

func TestWeekCalendar_LoadsOnceUntilInvalidated(t *testing.T) {
	f := newFixture()
	f.seed()
	ctx := context.Background()

	first, _ := f.calendar.EnsureLoaded(ctx)
	_, _ = f.calendar.EnsureLoaded(ctx)
	if f.weeks.loads != 1 {
		t.Errorf("期望加载 1 次, 实际 %d", f.weeks.loads)
	}

	f.calendar.Invalidate()
	if f.calendar.Loaded() {
		t.Error("Invalidate 后应为未加载")
	}
	if got := first.DatesFor("W1", 1); len(got) != 2 {
		t.Errorf("已取出的快照不应受 Invalidate 影响, 实际 %v", got)
	}
	_, _ = f.calendar.EnsureLoaded(ctx)
	if f.weeks.loads != 2 {
		t.Errorf("Invalidate 后期望重新加载, 实际加载 %d 次", f.weeks.loads)
	}
}

func TestWeekCalendar_SnapshotPerGeneration(t *testing.T) {
	flag := &stubGenerationReader{gen: dataset.GenerationB}
	repo := &genWeekRepo{
		flag: flag,
		structures: map[dataset.Generation][]model.WeekStructure{
			dataset.GenerationA: {{WeekNumber: 1, StartDate: monday(2023, 10, 2)}},
			dataset.GenerationB: {{WeekNumber: 1, StartDate: monday(2024, 9, 30)}},
		},
		maps: []model.WeekMapNumeric{{WeekID: "W1", WeekNumber: 1}},
	}
	calendar := NewWeekCalendar(repo, flag, testLogger)

	// 切换前固定在 A 的请求在切换后才加载周历
	pinnedA := dataset.WithGeneration(context.Background(), dataset.GenerationA)
	old, err := calendar.EnsureLoaded(pinnedA)
	if err != nil {
		t.Fatalf("EnsureLoaded 失败: %v", err)
	}
	if got := old.DatesFor("W1", 1); len(got) != 1 || !got[0].Equal(monday(2023, 10, 2)) {
		t.Errorf("固定在 A 的请求应得到 A 的日期, 实际 %v", got)
	}

	live, _ := calendar.EnsureLoaded(context.Background())
	if live.Generation != dataset.GenerationB {
		t.Fatalf("未固定的请求应使用当前代 B, 实际 %q", live.Generation)
	}
	if got := live.DatesFor("W1", 1); len(got) != 1 || !got[0].Equal(monday(2024, 9, 30)) {
		t.Errorf("旧代快照不应被当前代请求使用, 实际 %v", got)
	}
}

// 加载过程中发生 Invalidate 时，结果返回给调用方但不写回
type invalidatingWeekRepo struct {
	*mockWeekRepo
	calendar *WeekCalendar
}

func (r *invalidatingWeekRepo) ListNumericMaps(ctx context.Context) ([]model.WeekMapNumeric, error) {
	r.calendar.Invalidate()
	return r.mockWeekRepo.ListNumericMaps(ctx)
}

func TestWeekCalendar_LoadDuringInvalidateNotStored(t *testing.T) {
	f := newFixture()
	f.seed()
	repo := &invalidatingWeekRepo{mockWeekRepo: f.weeks}
	calendar := NewWeekCalendar(repo, f.gens, testLogger)
	repo.calendar = calendar

	weeks, err := calendar.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("EnsureLoaded 失败: %v", err)
	}
	if got := weeks.DatesFor("W1", 1); len(got) != 2 {
		t.Errorf("调用方应拿到完整快照, 实际 %v", got)
	}
	if calendar.Loaded() {
		t.Error("跨越 Invalidate 的加载不应写回")
	}
}
