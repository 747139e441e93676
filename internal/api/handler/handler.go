package handler

import "github.com/Bogdy12/uclapi/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Timetable *TimetableHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable),
		Export:    NewExportHandler(svc.Timetable, svc.Export),
	}
}
