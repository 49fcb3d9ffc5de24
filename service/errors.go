package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound 记录不存在或不属于当前用户
	ErrNotFound = errors.New("registro não encontrado")
	// ErrWalletNotFound 钱包不存在、不属于当前用户或已归档
	ErrWalletNotFound = errors.New("Carteira não encontrada ou arquivada.")
	// ErrEmailDisabled 邮件服务未启用
	ErrEmailDisabled = errors.New("邮件服务未启用")
)

// ValidationError 输入校验失败，HTTP 400
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建校验错误
func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// RateLimitError 超过生成次数限制，HTTP 429
type RateLimitError struct {
	Limit  int
	Window time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Window == time.Hour {
		return fmt.Sprintf("Limite de %d gerações por hora excedido.", e.Limit)
	}
	return fmt.Sprintf("Limite de %d gerações a cada %s excedido.", e.Limit, e.Window)
}

// UpstreamError 模型调用失败，超时对应 504，其余 502
type UpstreamError struct {
	Message string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ShapeError 模型返回内容无法解析或结构不完整，HTTP 422
type ShapeError struct {
	Message string
	Preview string
}

func (e *ShapeError) Error() string {
	return e.Message
}
