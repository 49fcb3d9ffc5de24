package middleware

import (
	"net/http"
	"sync"
	"time"

	"fintrack/cache"

	"github.com/gin-gonic/gin"
)

// MsgTooManyLogins 登录限流提示
const MsgTooManyLogins = "Muitas tentativas de login. Tente novamente em instantes."

// LoginRateKey 登录计数在存储中的键
func LoginRateKey(ip string) string {
	return "login_rate:" + ip
}

type loginEntry struct {
	count     int
	expiresAt time.Time
}

// LoginLimiter 按 IP 统计窗口内的登录尝试次数
// 条目 TTL 与窗口一致，过期由存储回收
type LoginLimiter struct {
	mu          sync.Mutex
	store       cache.Store
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter 创建登录限流器，store 必填
func NewLoginLimiter(store cache.Store, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

// Attempts 当前窗口内的尝试次数
func (l *LoginLimiter) Attempts(ip string) int {
	e, ok := l.entry(ip, time.Now())
	if !ok {
		return 0
	}
	return e.count
}

func (l *LoginLimiter) entry(ip string, now time.Time) (loginEntry, bool) {
	v, ok := l.store.Get(LoginRateKey(ip))
	if !ok {
		return loginEntry{}, false
	}
	e, ok := v.(loginEntry)
	if !ok || !now.Before(e.expiresAt) {
		return loginEntry{}, false
	}
	return e, true
}

// hit 未超限时计数加一，窗口从第一次尝试开始
func (l *LoginLimiter) hit(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entry(ip, now)
	if !ok {
		e = loginEntry{expiresAt: now.Add(l.window)}
	}
	if e.count >= l.maxAttempts {
		return false
	}
	e.count++
	l.store.Set(LoginRateKey(ip), e, e.expiresAt.Sub(now))
	return true
}

// Handler 超过次数返回 429
func (l *LoginLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.hit(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": MsgTooManyLogins,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRateLimit 登录接口限流中间件
func LoginRateLimit(store cache.Store, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return NewLoginLimiter(store, maxAttempts, window).Handler()
}
