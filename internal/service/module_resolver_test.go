package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Bogdy12/uclapi/internal/model"
)

func TestParseModuleIdentifier(t *testing.T) {
	tests := []struct {
		in        string
		module    string
		instance  string
		qualified bool
	}{
		{"COMP0016", "COMP0016", "", false},
		{"COMP0016-A6U-T1", "COMP0016", "A6U-T1", true},
		// 长度不超过阈值时即便含 '-' 也按课程代码处理
		{"101P-2023", "101P-2023", "", false},
		{"101P-20234", "101P", "20234", true},
	}
	for _, tt := range tests {
		got := parseModuleIdentifier(tt.in)
		if got.ModuleID != tt.module || got.InstanceCode != tt.instance || got.Qualified != tt.qualified {
			t.Errorf("parseModuleIdentifier(%q) = %+v", tt.in, got)
		}
	}
}

func TestResolveModules(t *testing.T) {
	f := newFixture()
	f.seed()
	r := NewModuleResolver(f.repo)
	ctx := context.Background()

	got, err := r.ResolveModules(ctx, []string{"COMP0016-A6U-T2"})
	if err != nil {
		t.Fatalf("ResolveModules 失败: %v", err)
	}
	if len(got) != 1 || got[0].InstID != 102 {
		t.Errorf("带实例代码应解析为唯一实例 102, 实际 %+v", got)
	}

	got, err = r.ResolveModules(ctx, []string{"COMP0016-A6U-T1", "COMP0016"})
	if err != nil {
		t.Fatalf("ResolveModules 失败: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("期望 1 个指定实例 + 2 个全部实例, 实际 %d", len(got))
	}
}

func TestResolveModules_AllOrNothing(t *testing.T) {
	f := newFixture()
	f.seed()
	f.modules.add(model.Module{ModuleID: "MATH0001", InstID: 200, Name: "Maths"}, "A4U-T9")
	r := NewModuleResolver(f.repo)

	cases := [][]string{
		{"COMP0016", "NOPE0000"},
		{"COMP0016", "COMP0016-XXX-T9"},
		// 实例代码存在但不属于该课程
		{"COMP0016-A4U-T9"},
	}
	for _, ids := range cases {
		got, err := r.ResolveModules(context.Background(), ids)
		if !errors.Is(err, ErrModuleNotFound) {
			t.Errorf("%v 期望 ErrModuleNotFound, 实际 %v", ids, err)
		}
		if got != nil {
			t.Errorf("%v 失败时不应返回部分结果: %+v", ids, got)
		}
	}
}
