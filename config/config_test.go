package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://127.0.0.1:8080/api/v1" {
		t.Errorf("期望默认 base_url，实际=%s", cfg.Upstream.BaseURL)
	}
	if cfg.Alert.DismissAfter != 3*time.Second {
		t.Errorf("期望提示 3s 自动关闭，实际=%s", cfg.Alert.DismissAfter)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("期望配置文件覆盖 log.level，实际=%s", cfg.Log.Level)
	}
	if cfg.Session.Store != "file" {
		t.Errorf("期望默认 session.store=file，实际=%s", cfg.Session.Store)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("UNIHUB_UPSTREAM_BASE_URL", "https://campus.example.com/api/v1")
	t.Setenv("UNIHUB_SESSION_STORE", "memory")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 6000\n"), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://campus.example.com/api/v1" {
		t.Errorf("期望环境变量覆盖 base_url，实际=%s", cfg.Upstream.BaseURL)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("期望环境变量覆盖 session.store，实际=%s", cfg.Session.Store)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("期望配置文件端口 6000，实际=%d", cfg.Server.Port)
	}
}

func TestLoad_InvalidUpstream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("upstream:\n  base_url: not-a-url\n"), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("非法 base_url 应校验失败")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 5180},
			Upstream: UpstreamConfig{BaseURL: "http://127.0.0.1:8080/api/v1"},
			Session:  SessionConfig{Store: "memory"},
			Alert:    AlertConfig{DismissAfter: 3 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"相对 base_url", func(c *Config) { c.Upstream.BaseURL = "/api/v1" }, true},
		{"redis 存储未开启 redis", func(c *Config) { c.Session.Store = "redis" }, true},
		{"redis 存储已开启 redis", func(c *Config) { c.Session.Store = "redis"; c.Redis.Enabled = true }, false},
		{"文件存储缺路径", func(c *Config) { c.Session.Store = "file" }, true},
		{"未知存储", func(c *Config) { c.Session.Store = "cookie" }, true},
		{"提示时长为 0", func(c *Config) { c.Alert.DismissAfter = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
