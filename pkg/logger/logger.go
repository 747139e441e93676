package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Bogdy12/uclapi/config"
)

// serviceName 写入每条日志的 service 字段
const serviceName = "uclapi"

// NewLogger 根据配置初始化 Zap 日志实例
// fields 作为公共字段附加到每条日志（如 set_id）
func NewLogger(cfg *config.LogConfig, fields ...zap.Field) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "ts"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if paths := outputPaths(cfg.Output); len(paths) > 0 {
		zapCfg.OutputPaths = paths
	}
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}

	return logger.Named("timetable").With(fields...), nil
}

// outputPaths 解析逗号分隔的输出位置，空串表示沿用 zap 默认值
func outputPaths(output string) []string {
	var paths []string
	for _, p := range strings.Split(output, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
