package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Bogdy12/uclapi/internal/dataset"
)

type countingPinner struct {
	calls int
	err   error
}

func (p *countingPinner) Pin(ctx context.Context) (context.Context, error) {
	p.calls++
	if p.err != nil {
		return ctx, p.err
	}
	return dataset.WithGeneration(ctx, dataset.GenerationA), nil
}

func setupTestTimetableService(f *fixture, pinner GenerationPinner, builder PersonalTimetableBuilder) (TimetableService, *fakeQueue) {
	queue := &fakeQueue{}
	svc := NewTimetableService(
		NewPersonalTimetableCache(newFakeStore(), queue, builder, testLogger),
		NewModuleResolver(f.repo),
		f.assembler,
		NewDepartmentCatalog(f.repo, f.resolvers, "LIVE-23-24"),
		pinner,
		testLogger,
	)
	return svc, queue
}

func TestGetCustomTimetable(t *testing.T) {
	f := newFixture()
	f.seed()
	svc, _ := setupTestTimetableService(f, nil, &fakeBuilder{})
	ctx := context.Background()

	all, err := svc.GetCustomTimetable(ctx, []string{"COMP0016-A6U-T1"}, "")
	if err != nil {
		t.Fatalf("GetCustomTimetable 失败: %v", err)
	}
	if all.Count() != 4 {
		t.Errorf("期望 4 个事件, 实际 %d", all.Count())
	}

	one, err := svc.GetCustomTimetable(ctx, []string{"COMP0016-A6U-T1"}, "2023-10-09")
	if err != nil {
		t.Fatalf("GetCustomTimetable 失败: %v", err)
	}
	if len(one) != 1 || len(one["2023-10-09"]) != 1 {
		t.Errorf("日期过滤错误: %v", one)
	}

	none, _ := svc.GetCustomTimetable(ctx, []string{"COMP0016"}, "2024-01-01")
	if evs, ok := none["2024-01-01"]; !ok || len(evs) != 0 {
		t.Errorf("缺失日期期望空列表, 实际 %v", none)
	}
}

func TestGetCustomTimetable_UnknownCombination(t *testing.T) {
	f := newFixture()
	f.seed()
	svc, _ := setupTestTimetableService(f, nil, &fakeBuilder{})

	_, err := svc.GetCustomTimetable(context.Background(), []string{"COMP0016", "NOPE0000"}, "")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("期望 ErrModuleNotFound, 实际 %v", err)
	}
}

func TestGetStudentTimetable_PinsGeneration(t *testing.T) {
	f := newFixture()
	f.seed()
	pinner := &countingPinner{}
	svc, queue := setupTestTimetableService(f, pinner, &fakeBuilder{result: builtTimetable()})

	got, err := svc.GetStudentTimetable(context.Background(), "abc12", "2023-11-06")
	if err != nil {
		t.Fatalf("GetStudentTimetable 失败: %v", err)
	}
	if pinner.calls != 1 {
		t.Errorf("每个请求应固定一次数据集代, 实际 %d", pinner.calls)
	}
	if len(got["2023-11-06"]) != 1 || len(queue.submitted) != 1 {
		t.Errorf("结果或投递错误: %v, %d", got, len(queue.submitted))
	}

	pinner.err = errDBDown
	if _, err := svc.GetStudentTimetable(context.Background(), "abc12", ""); !errors.Is(err, errDBDown) {
		t.Errorf("读取切换标志失败应向上传递, 实际 %v", err)
	}
}

func TestGetDepartments(t *testing.T) {
	f := newFixture()
	f.seed()
	svc, _ := setupTestTimetableService(f, nil, &fakeBuilder{})
	ctx := context.Background()

	depts, err := svc.GetDepartments(ctx)
	if err != nil || len(depts) != 1 {
		t.Fatalf("GetDepartments 错误: %v %v", depts, err)
	}
	modules, err := svc.GetDepartmentalModules(ctx, "COMPS_ENG")
	if err != nil || len(modules["COMP0016"].Instances) != 2 {
		t.Errorf("GetDepartmentalModules 错误: %v %v", modules, err)
	}
}
