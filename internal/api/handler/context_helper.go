package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/pkg/response"
)

// studentIDKey 上游认证网关写入的学生标识
const studentIDKey = "student_id"

// MustGetStudentID 取学生标识：优先 gin 上下文中的 student_id，其次查询参数 student。
// 缺失时写入 400 响应并返回 false，调用方应直接 return。
func MustGetStudentID(c *gin.Context) (string, bool) {
	if v, exists := c.Get(studentIDKey); exists {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	if s := strings.TrimSpace(c.Query("student")); s != "" {
		return s, true
	}
	response.BadRequest(c, 20003, "缺少学生标识")
	return "", false
}

// MustGetDateFilter 读取可选的 date 参数（YYYY-MM-DD）。
// 格式错误时写入 400 响应并返回 false。
func MustGetDateFilter(c *gin.Context) (string, bool) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		return "", true
	}
	if _, err := time.Parse(dto.DateLayout, date); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20001, "日期格式错误，应为 YYYY-MM-DD", date)
		return "", false
	}
	return date, true
}

// MustGetModules 读取逗号分隔的 modules 参数，去除空白与空项。
func MustGetModules(c *gin.Context) ([]string, bool) {
	var modules []string
	for _, m := range strings.Split(c.Query("modules"), ",") {
		if m = strings.TrimSpace(m); m != "" {
			modules = append(modules, m)
		}
	}
	if len(modules) == 0 {
		response.BadRequest(c, 20002, "缺少课程标识 modules")
		return nil, false
	}
	return modules, true
}
