package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/config"
	"github.com/Bogdy12/uclapi/internal/api/handler"
	"github.com/Bogdy12/uclapi/internal/api/router"
	"github.com/Bogdy12/uclapi/internal/external"
	"github.com/Bogdy12/uclapi/internal/repository"
	"github.com/Bogdy12/uclapi/internal/service"
	"github.com/Bogdy12/uclapi/internal/worker"
	"github.com/Bogdy12/uclapi/pkg/database"
	applogger "github.com/Bogdy12/uclapi/pkg/logger"
	"github.com/Bogdy12/uclapi/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("UCLAPI_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, zap.String("set_id", cfg.Timetable.SetID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	if cfg.Database.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，个人课表不缓存、不限流）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，个人课表缓存与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 外部协作方
	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		logger.Warn("时区加载失败，使用 UTC", zap.String("timezone", cfg.Database.Timezone), zap.Error(err))
		loc = time.UTC
	}

	deps := service.Dependencies{Location: loc}

	if coords, err := external.LoadFileCoordinates(cfg.Timetable.CoordinatesFile); err != nil {
		logger.Warn("坐标文件加载失败，坐标将显示为 Unknown",
			zap.String("path", cfg.Timetable.CoordinatesFile), zap.Error(err))
	} else {
		logger.Info("坐标文件已加载", zap.Int("entries", coords.Len()))
		deps.Coords = coords
	}

	if cfg.Timetable.InstanceServiceURL != "" {
		deps.Describer = external.NewHTTPInstanceDescriber(
			cfg.Timetable.InstanceServiceURL, cfg.Timetable.InstanceServiceTimeout, logger)
	} else {
		deps.Describer = external.NewCodeDescriber()
	}

	// 5.1 个人课表异步写缓存
	var populator *worker.Populator
	if rdb != nil {
		populator = worker.NewPopulator(
			rdb, service.PersonalCacheKey, cfg.Timetable.CacheTTL,
			cfg.Timetable.PopulateWorkers, cfg.Timetable.PopulateQueueSize,
			logger,
		)
		deps.Store = rdb
		deps.Queue = populator
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	if populator != nil {
		populator.Start(appCtx)
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	if svc.Watcher != nil {
		if err := svc.Watcher.Start(appCtx); err != nil {
			logger.Fatal("生成代巡检启动失败", zap.Error(err))
		}
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if svc.Watcher != nil {
		svc.Watcher.Stop()
	}

	// 等待队列中的写缓存任务完成
	if populator != nil {
		populator.Stop()
	}
	stopApp()

	st := svc.Cache.Stats()
	logger.Info("查询缓存统计", zap.Int64("hits", st.Hits), zap.Int64("misses", st.Misses))

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
