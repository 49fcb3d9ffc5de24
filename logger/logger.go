package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"fintrack/config"
)

// Logger 带组件名的结构化日志
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

// Options 日志选项
type Options struct {
	Level     slog.Level
	Format    string // text | json
	Component string
	Output    io.Writer
}

var (
	mu      sync.RWMutex
	current = New(Options{Level: slog.LevelInfo, Component: "app"})
)

// New 创建日志实例
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	component := opts.Component
	if component == "" {
		component = "app"
	}
	base := slog.New(handler)
	return &Logger{
		Logger:    base.With("component", component),
		base:      base,
		component: component,
	}
}

// Init 根据配置初始化全局日志
func Init(cfg config.LogConfig) *Logger {
	l := New(Options{Level: ParseLevel(cfg.Level), Format: cfg.Format, Component: "app"})
	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l.Logger)
	return l
}

// L 全局日志
func L() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Component 获取指定组件的日志
func Component(name string) *Logger {
	return L().WithComponent(name)
}

// With 追加字段
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), base: l.base.With(args...), component: l.component}
}

// WithComponent 切换组件名
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.base.With("component", component), base: l.base, component: component}
}

// Name 组件名
func (l *Logger) Name() string {
	return l.component
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// IntoContext 将日志放入 context
func IntoContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 从 context 取日志，不存在时返回全局日志
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
			return l
		}
	}
	return L()
}
