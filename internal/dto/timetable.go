package dto

import (
	"encoding/json"
	"sort"
)

// DateLayout 课表按日期分组时使用的键格式
const DateLayout = "2006-01-02"

// Unknown 查询未命中时对外展示的占位值
const Unknown = "Unknown"

// ── 解析结果 ──

// DateKeyedEvents 日期 (YYYY-MM-DD) → 当天课程事件
// JSON 序列化时键按字典序输出，即按日期升序；同一天内事件无序
type DateKeyedEvents map[string][]EnrichedEvent

// Add 追加事件，首次出现的日期自动创建列表
func (d DateKeyedEvents) Add(date string, ev EnrichedEvent) {
	d[date] = append(d[date], ev)
}

// Dates 升序返回所有日期
func (d DateKeyedEvents) Dates() []string {
	dates := make([]string, 0, len(d))
	for date := range d {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Count 事件总数
func (d DateKeyedEvents) Count() int {
	n := 0
	for _, evs := range d {
		n += len(evs)
	}
	return n
}

// FilterDate 仅保留指定日期；该日期不存在时返回空列表而非缺失
func (d DateKeyedEvents) FilterDate(date string) DateKeyedEvents {
	evs, ok := d[date]
	if !ok || evs == nil {
		evs = []EnrichedEvent{}
	}
	return DateKeyedEvents{date: evs}
}

// EnrichedEvent 一次上课的完整展示数据
type EnrichedEvent struct {
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Duration       int             `json:"duration"`
	Module         ModuleSummary   `json:"module"`
	Location       Location        `json:"location"`
	SessionTitle   string          `json:"session_title"`
	SessionType    string          `json:"session_type"`
	SessionTypeStr string          `json:"session_type_str"`
	Contact        string          `json:"contact"`
	Instance       InstanceDetails `json:"instance"`
}

// ModuleSummary 事件所属课程摘要
type ModuleSummary struct {
	ModuleID       string   `json:"module_id"`
	DepartmentID   string   `json:"department_id"`
	DepartmentName string   `json:"department_name"`
	Name           string   `json:"name"`
	Lecturer       Lecturer `json:"lecturer"`
}

// Lecturer 讲师展示信息，缺失字段为 "Unknown"
type Lecturer struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// UnknownLecturer 全部字段为占位值的讲师
func UnknownLecturer() Lecturer {
	return Lecturer{
		Name:           Unknown,
		Email:          Unknown,
		DepartmentID:   Unknown,
		DepartmentName: Unknown,
	}
}

// Location 上课地点；房间未知时序列化为 {}
type Location struct {
	Name        string      `json:"name"`
	Capacity    int         `json:"capacity"`
	Type        string      `json:"type"`
	Address     []string    `json:"address"`
	SiteName    string      `json:"site_name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Coordinates 经纬度（字符串形式，与坐标服务保持一致）
type Coordinates struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// IsZero 是否为空地点
func (l Location) IsZero() bool {
	return l.Name == "" && l.SiteName == "" && l.Type == "" && l.Capacity == 0 && len(l.Address) == 0
}

// MarshalJSON 空地点输出 {}
func (l Location) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("{}"), nil
	}
	type plain Location
	return json.Marshal(plain(l))
}

// ── 课程实例 ──

// InstanceDescription 实例描述服务返回的开课方式与学期信息
type InstanceDescription struct {
	Delivery Delivery `json:"delivery"`
	Periods  Periods  `json:"periods"`
}

// InstanceDetails 课程实例详情
type InstanceDetails struct {
	Delivery     Delivery `json:"delivery"`
	Periods      Periods  `json:"periods"`
	InstanceCode string   `json:"instance_code"`
}

// Delivery 开课层次
type Delivery struct {
	FHEQLevel       int  `json:"fheq_level"`
	IsUndergraduate bool `json:"is_undergraduate"`
}

// Periods 开课学期
type Periods struct {
	TeachingPeriods TeachingPeriods `json:"teaching_periods"`
	YearLong        bool            `json:"year_long"`
	LSR             bool            `json:"lsr"`
	SummerSchool    SummerSchool    `json:"summer_school"`
}

// TeachingPeriods 各学期是否开课
type TeachingPeriods struct {
	Term1         bool `json:"term_1"`
	Term2         bool `json:"term_2"`
	Term3         bool `json:"term_3"`
	Term1NextYear bool `json:"term_1_next_year"`
	Summer        bool `json:"summer"`
}

// SummerSchool 暑期学校信息
type SummerSchool struct {
	IsSummerSchool bool            `json:"is_summer_school"`
	Sessions       map[string]bool `json:"sessions,omitempty"`
}
