package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Bogdy12/uclapi/internal/service"
	"github.com/Bogdy12/uclapi/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// GetPersonalTimetable 学生个人课表
// GET /api/v1/timetable/personal?student=&date=
func (h *TimetableHandler) GetPersonalTimetable(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}
	date, ok := MustGetDateFilter(c)
	if !ok {
		return
	}

	events, err := h.svc.GetStudentTimetable(c.Request.Context(), studentID, date)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, events)
}

// GetModuleTimetable 按课程组合生成课表
// GET /api/v1/timetable/bymodule?modules=COMP0016,COMP0019-A6U-T2&date=
func (h *TimetableHandler) GetModuleTimetable(c *gin.Context) {
	modules, ok := MustGetModules(c)
	if !ok {
		return
	}
	date, ok := MustGetDateFilter(c)
	if !ok {
		return
	}

	events, err := h.svc.GetCustomTimetable(c.Request.Context(), modules, date)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, events)
}

// ListDepartments 部门列表
// GET /api/v1/timetable/data/departments
func (h *TimetableHandler) ListDepartments(c *gin.Context) {
	depts, err := h.svc.GetDepartments(c.Request.Context())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, depts)
}

// ListDepartmentModules 部门开设课程
// GET /api/v1/timetable/data/modules?department=COMPS_ENG
func (h *TimetableHandler) ListDepartmentModules(c *gin.Context) {
	deptID := strings.TrimSpace(c.Query("department"))
	if deptID == "" {
		response.BadRequest(c, 20005, "缺少部门代码 department")
		return
	}

	modules, err := h.svc.GetDepartmentalModules(c.Request.Context(), deptID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, modules)
}

// handleTimetableError 将课表业务错误映射为 HTTP 响应
func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 20004, "课程组合不存在")
	case errors.Is(err, service.ErrTimetableBuildFailed):
		_ = c.Error(err)
		response.ServiceUnavailable(c, 20006, "个人课表暂时无法生成，请稍后重试")
	default:
		// 实例缺失属于数据完整性问题，与基础设施错误一样按 500 处理
		_ = c.Error(err)
		response.InternalError(c)
	}
}
