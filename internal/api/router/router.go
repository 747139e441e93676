package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/config"
	"github.com/Bogdy12/uclapi/internal/api/handler"
	"github.com/Bogdy12/uclapi/internal/api/middleware"
	"github.com/Bogdy12/uclapi/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil，此时不启用限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	if rdb != nil && cfg.Server.RateLimit.Limit > 0 {
		v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger))
	}
	{
		timetable := v1.Group("/timetable")
		{
			timetable.GET("/personal", h.Timetable.GetPersonalTimetable)
			timetable.GET("/personal.ics", h.Export.PersonalICS)
			timetable.GET("/bymodule", h.Timetable.GetModuleTimetable)
			timetable.GET("/bymodule.xlsx", h.Export.ModuleXLSX)

			data := timetable.Group("/data")
			{
				data.GET("/departments", h.Timetable.ListDepartments)
				data.GET("/modules", h.Timetable.ListDepartmentModules)
			}
		}
	}

	return r
}
