package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.AIPlan.RateLimit)
	assert.Equal(t, time.Hour, cfg.AIPlan.RateWindow())
	assert.Equal(t, 20, cfg.Prompt.MinLength)
	assert.Equal(t, 2000, cfg.Prompt.MaxLength)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfig_ExternalFileAndEnv(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ai_plan:\n  rate_limit: 3\nllm:\n  provider: anthropic\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FINTRACK_LLM_MODEL", "claude-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.AIPlan.RateLimit)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-test", cfg.LLM.Model)
	// 未覆盖的字段保留默认值
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
}

func TestConfigLocation(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, time.Local, nilCfg.Location())

	cfg := &Config{Server: ServerConfig{Timezone: "America/Sao_Paulo"}}
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())

	cfg.Server.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}
