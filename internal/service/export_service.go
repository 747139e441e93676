package service

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	icsProductID   = "-//UCL API//Timetable//EN"
	icsTimeLayout  = "15:04"
	xlsxSheetName  = "Timetable"
	exportFilename = "timetable"
)

// ExportService 课表导出接口
//
// 设计说明：
//   - 入参为已解析好的课表，导出本身不访问数据集
//   - 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportICS 导出为 iCalendar，每个事件一个 VEVENT
	ExportICS(events dto.DateKeyedEvents, name string) (*bytes.Buffer, string, error)
	// ExportXLSX 导出为 Excel，按日期、开始时间排序，每个事件一行
	ExportXLSX(events dto.DateKeyedEvents, name string) (*bytes.Buffer, string, error)
}

type exportService struct {
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例；loc 为课表时间所在时区
func NewExportService(loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{loc: loc, logger: logger}
}

// datedEvent 排序用的扁平事件
type datedEvent struct {
	date string
	ev   dto.EnrichedEvent
}

func flatten(events dto.DateKeyedEvents) []datedEvent {
	var out []datedEvent
	for _, date := range events.Dates() {
		for _, ev := range events[date] {
			out = append(out, datedEvent{date: date, ev: ev})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].date != out[j].date {
			return out[i].date < out[j].date
		}
		return out[i].ev.StartTime < out[j].ev.StartTime
	})
	return out
}

// ════════════════════════════════════════════════════════════
// ExportICS
// ════════════════════════════════════════════════════════════

func (s *exportService) ExportICS(events dto.DateKeyedEvents, name string) (*bytes.Buffer, string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	if name != "" {
		cal.SetName(name)
	}

	stamp := time.Now().UTC()
	for i, item := range flatten(events) {
		start, err := s.at(item.date, item.ev.StartTime)
		if err != nil {
			s.logger.Warn("跳过无法解析开始时间的事件",
				zap.String("date", item.date),
				zap.String("start_time", item.ev.StartTime),
				zap.Error(err),
			)
			continue
		}
		end, err := s.at(item.date, item.ev.EndTime)
		if err != nil || !end.After(start) {
			end = start.Add(time.Duration(item.ev.Duration) * time.Minute)
		}

		vev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@uclapi", item.ev.Module.ModuleID, item.date, i))
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(start)
		vev.SetEndAt(end)
		vev.SetSummary(fmt.Sprintf("%s (%s)", item.ev.SessionTitle, item.ev.SessionTypeStr))
		if loc := locationText(item.ev.Location); loc != "" {
			vev.SetLocation(loc)
		}
		vev.SetDescription(fmt.Sprintf("%s %s\nLecturer: %s\nContact: %s",
			item.ev.Module.ModuleID, item.ev.Module.Name,
			item.ev.Module.Lecturer.Name, item.ev.Contact,
		))
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 iCalendar 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportName(name) + ".ics", nil
}

// at 将日期与 HH:MM 组合为课表时区下的时间
func (s *exportService) at(date, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if len(clock) > len(icsTimeLayout) {
		clock = clock[:len(icsTimeLayout)]
	}
	return time.ParseInLocation(dto.DateLayout+" "+icsTimeLayout, date+" "+clock, s.loc)
}

// ════════════════════════════════════════════════════════════
// ExportXLSX
// ════════════════════════════════════════════════════════════

var xlsxHeaders = []string{
	"Date", "Start", "End", "Module", "Name", "Type", "Title", "Location", "Site", "Lecturer", "Contact",
}

func (s *exportService) ExportXLSX(events dto.DateKeyedEvents, name string) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range xlsxHeaders {
		f.SetCellValue(xlsxSheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(xlsxSheetName, "A1", cell(colName(len(xlsxHeaders)-1), 1), headerStyle)
	f.SetColWidth(xlsxSheetName, "A", "C", 12)
	f.SetColWidth(xlsxSheetName, "D", "K", 22)

	row := 2
	for _, item := range flatten(events) {
		ev := item.ev
		values := []interface{}{
			item.date,
			ev.StartTime,
			ev.EndTime,
			ev.Module.ModuleID,
			ev.Module.Name,
			ev.SessionTypeStr,
			ev.SessionTitle,
			ev.Location.Name,
			ev.Location.SiteName,
			ev.Module.Lecturer.Name,
			ev.Contact,
		}
		for i, v := range values {
			f.SetCellValue(xlsxSheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportName(name) + ".xlsx", nil
}

// ── 辅助函数 ──

func locationText(l dto.Location) string {
	if l.IsZero() {
		return ""
	}
	if l.SiteName == "" {
		return l.Name
	}
	return l.Name + ", " + l.SiteName
}

func exportName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return exportFilename
	}
	return exportFilename + "_" + strings.NewReplacer("/", "_", " ", "_", ",", "_").Replace(name)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
