package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Timetable TimetableConfig `mapstructure:"timetable"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 基于 Redis 的限流配置（limit<=0 表示关闭）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatabaseConfig 数据集所在的 PostgreSQL 配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（分钟）
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Output 日志输出位置：stdout、stderr 或文件路径，可逗号分隔多个
	Output string `mapstructure:"output"`
}

// TimetableConfig 时间表解析引擎配置
type TimetableConfig struct {
	// SetID 当前学年数据集标识，部门模块列表按此过滤
	SetID string `mapstructure:"set_id"`
	// EmailDomain 讲师邮箱后缀，拼接在 linkcode 之后
	EmailDomain string `mapstructure:"email_domain"`
	// PinGeneration 为 true 时每个请求只读取一次 A/B 标志
	PinGeneration bool `mapstructure:"pin_generation"`
	// CacheTTL 个人课表缓存过期时间，0 表示不设置过期
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	PopulateWorkers   int           `mapstructure:"populate_workers"`
	PopulateQueueSize int           `mapstructure:"populate_queue_size"`
	// GenerationWatchSpec cron 表达式，为空时不启动标志巡检
	GenerationWatchSpec string `mapstructure:"generation_watch_spec"`
	InvalidateOnFlip    bool   `mapstructure:"invalidate_on_flip"`

	// InstanceServiceURL 实例描述服务地址，为空时按实例代码本地解析
	InstanceServiceURL     string        `mapstructure:"instance_service_url"`
	InstanceServiceTimeout time.Duration `mapstructure:"instance_service_timeout"`
	CoordinatesFile        string        `mapstructure:"coordinates_file"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.limit", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "uclapi")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/London")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("timetable.set_id", "LIVE-24-25")
	v.SetDefault("timetable.email_domain", "@ucl.ac.uk")
	v.SetDefault("timetable.pin_generation", false)
	v.SetDefault("timetable.cache_ttl", "0s")
	v.SetDefault("timetable.populate_workers", 4)
	v.SetDefault("timetable.populate_queue_size", 256)
	v.SetDefault("timetable.generation_watch_spec", "@every 1m")
	v.SetDefault("timetable.invalidate_on_flip", true)
	v.SetDefault("timetable.instance_service_url", "")
	v.SetDefault("timetable.instance_service_timeout", "5s")
	v.SetDefault("timetable.coordinates_file", "./config/coordinates.yaml")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("UCLAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if strings.TrimSpace(c.Timetable.SetID) == "" {
		return fmt.Errorf("配置校验失败: timetable.set_id 不能为空")
	}
	if c.Timetable.PopulateWorkers <= 0 {
		return fmt.Errorf("配置校验失败: timetable.populate_workers 必须大于 0")
	}
	if c.Timetable.PopulateQueueSize <= 0 {
		return fmt.Errorf("配置校验失败: timetable.populate_queue_size 必须大于 0")
	}
	if c.Timetable.CacheTTL < 0 {
		return fmt.Errorf("配置校验失败: timetable.cache_ttl 不能为负数")
	}
	return nil
}
