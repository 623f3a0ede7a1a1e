package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Export   ExportConfig   `mapstructure:"export"`
	Limit    LimitConfig    `mapstructure:"limit"`
}

// ServerConfig 控制台 HTTP 服务配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BodyLimit    int64      `mapstructure:"body_limit"`
	CORS         CORSConfig `mapstructure:"cors"`
	MetricsRoute bool       `mapstructure:"metrics_route"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// UpstreamConfig 校园后端服务配置
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig 登录态持久化配置
// Store: file | redis | memory
type SessionConfig struct {
	Store    string `mapstructure:"store"`
	FilePath string `mapstructure:"file_path"`
	// InFlightTTL 防重复提交锁的最长持有时间
	InFlightTTL time.Duration `mapstructure:"in_flight_ttl"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File 非空时额外写入滚动日志文件
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// AlertConfig 全局提示配置
type AlertConfig struct {
	DismissAfter time.Duration `mapstructure:"dismiss_after"`
}

// ExportConfig 数据导出配置
type ExportConfig struct {
	// RecordConcurrency 并发拉取打卡记录的任务数上限
	RecordConcurrency int `mapstructure:"record_concurrency"`
}

// LimitConfig 限流配置
type LimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 5180)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.metrics_route", true)

	v.SetDefault("upstream.base_url", "http://127.0.0.1:8080/api/v1")
	v.SetDefault("upstream.timeout", "15s")

	v.SetDefault("session.store", "file")
	v.SetDefault("session.file_path", ".unihub/session.json")
	v.SetDefault("session.in_flight_ttl", "30s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("alert.dismiss_after", "3s")

	v.SetDefault("export.record_concurrency", 8)

	v.SetDefault("limit.requests", 120)
	v.SetDefault("limit.window", "1m")

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
	v.SetEnvPrefix("UNIHUB")
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
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("配置校验失败: upstream.base_url 必须是绝对地址")
	}
	switch c.Session.Store {
	case "file":
		if c.Session.FilePath == "" {
			return fmt.Errorf("配置校验失败: session.file_path 不能为空")
		}
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("配置校验失败: session.store=redis 需要开启 redis.enabled")
		}
	case "memory":
	default:
		return fmt.Errorf("配置校验失败: 未知的 session.store %q", c.Session.Store)
	}
	if c.Alert.DismissAfter <= 0 {
		return fmt.Errorf("配置校验失败: alert.dismiss_after 必须大于 0")
	}
	return nil
}
