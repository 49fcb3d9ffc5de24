// Package llm 对话补全接口与模型返回内容的解析
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/config"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// 支持的提供方
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	// ErrEmptyResponse 模型返回空内容
	ErrEmptyResponse = errors.New("empty model response")
	// ErrNotConfigured 未配置 API Key
	ErrNotConfigured = errors.New("llm provider not configured")
)

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 补全请求
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response 补全结果
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Completer 对话补全
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// NewCompleter 按配置创建提供方，base_url 仅用于 openai 兼容接口
func NewCompleter(cfg config.LLMConfig) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout()), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("不支持的模型提供方: %s", cfg.Provider)
	}
}
