// Package security 网关侧防护：CORS 白名单、安全响应头与按调用方限流。
// 白名单和限流参数支持配置热更新，课程目录之外的高价值接口
// （如测验提交）可挂更严格的独立限流器。
package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORSPolicy 运行时可整体替换的 Origin 白名单
type CORSPolicy struct {
	mu      sync.RWMutex
	origins map[string]bool
}

func NewCORSPolicy(allowed []string) *CORSPolicy {
	p := &CORSPolicy{}
	p.Update(allowed)
	return p
}

// Update 替换白名单，配置热更新回调调用
func (p *CORSPolicy) Update(allowed []string) {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}
	p.mu.Lock()
	p.origins = origins
	p.mu.Unlock()
}

// Allowed 判断 Origin 是否在白名单内
func (p *CORSPolicy) Allowed(origin string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.origins[origin]
}

// Middleware 仅对白名单中的 Origin 返回 CORS 头，支持 Credentials
func (p *CORSPolicy) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && p.Allowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Secure 安全响应头
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// 课程页之间不泄露来源
		c.Header("Referrer-Policy", "no-referrer")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// KeyFunc 提取限流主体的标识，如来源 IP 或登录用户
type KeyFunc func(*gin.Context) string

// ByClientIP 匿名流量按来源 IP 限流
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按调用方限流。Update 会重置已发放的限流器，
// 让新参数立即生效而不是等旧条目过期。
type RateLimiter struct {
	mu    sync.Mutex
	store map[string]*visitor
	limit rate.Limit
	burst int
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	l := &RateLimiter{}
	l.Update(maxRequests, window)
	go l.cleanup()
	return l
}

// Update 替换限流参数并清空状态，配置热更新回调调用
func (l *RateLimiter) Update(maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	l.mu.Lock()
	l.limit = rate.Every(window / time.Duration(maxRequests))
	l.burst = maxRequests
	l.store = make(map[string]*visitor)
	l.mu.Unlock()
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for key, v := range l.store {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(l.store, key)
			}
		}
		l.mu.Unlock()
	}
}

// Allow 判定该主体的本次请求是否放行
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, exists := l.store[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.store[key] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Middleware 超限返回 429；key 为空时放行
func (l *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k != "" && !l.Allow(k) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
