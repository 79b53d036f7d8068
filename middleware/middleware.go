// File: /middleware/middleware.go
package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"trailcraft-api/utils"
)

// BearerTokenKey is the gin context key holding the request's bearer token.
const BearerTokenKey = "bearer_token"

// ErrorHandler turns unhandled handler errors into a 500 response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Printf("Request error: %v", err.Error())

			c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
				Error:   "Internal server error",
				Message: "An unexpected error occurred",
				Code:    http.StatusInternalServerError,
			})
		}
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows requestsPerMinute per key with the given burst.
func NewRateLimiter(requestsPerMinute int, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}
}

// GetLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// CleanupLimiters drops limiters not used within maxIdle.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Len is the number of clients currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.limiters)
}

// RunCleanup drops idle limiters every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(maxIdle)
		}
	}
}

// RateLimit limits each client IP to requestsPerMinute with the given burst.
// Idle limiters are swept in the background until ctx is done.
func RateLimit(ctx context.Context, requestsPerMinute int, burst int) gin.HandlerFunc {
	rateLimiter := NewRateLimiter(requestsPerMinute, burst)
	go rateLimiter.RunCleanup(ctx, 10*time.Minute, 10*time.Minute)

	return rateLimitHandler(rateLimiter, requestsPerMinute)
}

func rateLimitHandler(rateLimiter *RateLimiter, requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rateLimiter.GetLimiter(c.ClientIP())
		reset := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", reset)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
				Error:   "Rate limit exceeded",
				Message: fmt.Sprintf("Too many requests. Limit: %d requests per minute", requestsPerMinute),
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Header("X-RateLimit-Reset", reset)
		c.Next()
	}
}

// ValidateJSON requires a JSON content type on requests that carry a body.
func ValidateJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodDelete, http.MethodOptions, http.MethodHead:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{
				Error:   "Invalid content type",
				Message: "Content-Type must be application/json; charset=utf-8",
				Code:    http.StatusBadRequest,
			})
			return
		}

		c.Next()
	}
}

// RequestObserver receives one call per completed request.
type RequestObserver interface {
	RequestObserved(method, route string, status int)
}

// RequestLogger logs [IP] METHOD PATH STATUS LATENCY USER_AGENT and reports to observer when set.
func RequestLogger(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Printf("[%s] %s %s %d %v %s",
			c.ClientIP(),
			c.Request.Method,
			path,
			status,
			latency,
			c.Request.UserAgent(),
		)

		if observer != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			observer.RequestObserved(c.Request.Method, route, status)
		}
	}
}

// SecurityHeaders middleware sets the standard browser hardening headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// PaginationDefaults normalizes page and limit query parameters.
func PaginationDefaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()

		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			page = DefaultPage
		}
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil || limit < 1 {
			limit = DefaultLimit
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}

		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))
		c.Request.URL.RawQuery = q.Encode()

		c.Next()
	}
}

// BearerToken stores the Authorization bearer token, if any, under BearerTokenKey.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerFromHeader(c.GetHeader("Authorization")); token != "" {
			c.Set(BearerTokenKey, token)
		}
		c.Next()
	}
}

// RequireBearerToken rejects requests without a bearer token.
func RequireBearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Error:   "Authentication required",
				Message: "JWT token is required. Provide it as Authorization: Bearer <token>",
				Code:    http.StatusUnauthorized,
			})
			return
		}
		c.Set(BearerTokenKey, token)
		c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
