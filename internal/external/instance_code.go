package external

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Bogdy12/uclapi/internal/dto"
)

// ── 实例代码本地解析 ──────────────────────────────────────
//
// 实例代码形如 A6U-T1：
//   - 第一段：开课方式字母 + FHEQ 层级数字 + U(本科)/P(研究生)
//   - 第二段：开课学期
//       T1 / T2 / T3      单个学期
//       T12 / T23 / T123  跨学期
//       T1NY              次学年第一学期
//       YEAR / Y          全学年
//       S                 夏季学期
//       LSR               补考（Late Summer Resit）
//       SS1 … SS9         暑期学校第 n 期
// 无法识别的学期代码保留全 false，不报错。
// ─────────────────────────────────────────────────────────────

// CodeDescriber 不依赖外部服务，直接从实例代码推导开课方式与学期
type CodeDescriber struct{}

// NewCodeDescriber 创建 CodeDescriber
func NewCodeDescriber() CodeDescriber {
	return CodeDescriber{}
}

// Describe 实现 service.InstanceDescriber
func (CodeDescriber) Describe(_ context.Context, code string) (dto.InstanceDescription, error) {
	return ParseInstanceCode(code)
}

// ParseInstanceCode 解析实例代码
func ParseInstanceCode(code string) (dto.InstanceDescription, error) {
	var desc dto.InstanceDescription

	delivery, period, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(code)), "-")
	if !ok || len(delivery) < 3 {
		return desc, fmt.Errorf("实例代码格式错误: %q", code)
	}

	level, err := strconv.Atoi(delivery[1 : len(delivery)-1])
	if err != nil {
		return desc, fmt.Errorf("实例代码 FHEQ 层级错误: %q", code)
	}
	desc.Delivery = dto.Delivery{
		FHEQLevel:       level,
		IsUndergraduate: delivery[len(delivery)-1] == 'U',
	}
	desc.Periods = parsePeriod(period)
	return desc, nil
}

func parsePeriod(period string) dto.Periods {
	var p dto.Periods
	tp := &p.TeachingPeriods

	switch {
	case period == "YEAR" || period == "Y":
		p.YearLong = true
		tp.Term1, tp.Term2, tp.Term3 = true, true, true
	case period == "LSR":
		p.LSR = true
	case period == "S":
		tp.Summer = true
	case period == "T1NY":
		tp.Term1NextYear = true
	case strings.HasPrefix(period, "SS"):
		p.SummerSchool.IsSummerSchool = true
		if n := strings.TrimPrefix(period, "SS"); n != "" {
			p.SummerSchool.Sessions = map[string]bool{n: true}
		}
	case strings.HasPrefix(period, "T"):
		for _, c := range strings.TrimPrefix(period, "T") {
			switch c {
			case '1':
				tp.Term1 = true
			case '2':
				tp.Term2 = true
			case '3':
				tp.Term3 = true
			}
		}
	}
	return p
}
