package service

import (
	"fmt"
	"time"

	"fintrack/cache"
)

// 默认生成次数限制
const (
	DefaultPlanRateLimit  = 5
	DefaultPlanRateWindow = time.Hour
)

// PlanLimiter 按用户统计窗口内的计划生成次数
// 计数窗口从第一次计数开始，过期后重新计数
type PlanLimiter struct {
	store  cache.Store
	limit  int
	window time.Duration
}

// NewPlanLimiter 创建限流器
func NewPlanLimiter(store cache.Store, limit int, window time.Duration) *PlanLimiter {
	if limit <= 0 {
		limit = DefaultPlanRateLimit
	}
	if window <= 0 {
		window = DefaultPlanRateWindow
	}
	return &PlanLimiter{store: store, limit: limit, window: window}
}

func planRateKey(userID uint) string {
	return fmt.Sprintf("ai_plan_rate:%d", userID)
}

type rateEntry struct {
	count     int
	expiresAt time.Time
}

// Count 当前窗口内已使用次数
func (l *PlanLimiter) Count(userID uint) int {
	v, ok := l.store.Get(planRateKey(userID))
	if !ok {
		return 0
	}
	e, ok := v.(rateEntry)
	if !ok || time.Now().After(e.expiresAt) {
		return 0
	}
	return e.count
}

// Allow 是否还能生成
func (l *PlanLimiter) Allow(userID uint) error {
	if l.Count(userID) >= l.limit {
		return &RateLimitError{Limit: l.limit, Window: l.window}
	}
	return nil
}

// Hit 计数加一，窗口不因后续计数而延长
func (l *PlanLimiter) Hit(userID uint) int {
	key := planRateKey(userID)
	now := time.Now()

	e := rateEntry{count: 0, expiresAt: now.Add(l.window)}
	if v, ok := l.store.Get(key); ok {
		if prev, ok := v.(rateEntry); ok && now.Before(prev.expiresAt) {
			e = prev
		}
	}
	e.count++
	l.store.Set(key, e, e.expiresAt.Sub(now))
	return e.count
}

// Reset 清除计数
func (l *PlanLimiter) Reset(userID uint) {
	l.store.Delete(planRateKey(userID))
}

// Limit 窗口内最大次数
func (l *PlanLimiter) Limit() int {
	return l.limit
}
