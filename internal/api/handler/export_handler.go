package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Bogdy12/uclapi/internal/service"
	"github.com/Bogdy12/uclapi/pkg/response"
)

const (
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 课表导出 Handler
type ExportHandler struct {
	timetable service.TimetableService
	export    service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(timetable service.TimetableService, export service.ExportService) *ExportHandler {
	return &ExportHandler{timetable: timetable, export: export}
}

// PersonalICS 个人课表导出为 iCalendar
// GET /api/v1/timetable/personal.ics?student=
func (h *ExportHandler) PersonalICS(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	events, err := h.timetable.GetStudentTimetable(c.Request.Context(), studentID, "")
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	buf, filename, err := h.export.ExportICS(events, studentID)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.Attachment(c, filename, contentTypeICS, buf)
}

// ModuleXLSX 课程组合课表导出为 Excel
// GET /api/v1/timetable/bymodule.xlsx?modules=
func (h *ExportHandler) ModuleXLSX(c *gin.Context) {
	modules, ok := MustGetModules(c)
	if !ok {
		return
	}

	events, err := h.timetable.GetCustomTimetable(c.Request.Context(), modules, "")
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	buf, filename, err := h.export.ExportXLSX(events, strings.Join(modules, "_"))
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.Attachment(c, filename, contentTypeXLSX, buf)
}
