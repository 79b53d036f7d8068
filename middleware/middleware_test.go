package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBearerFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", bearerFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "abc", bearerFromHeader("bearer   abc "))
	assert.Empty(t, bearerFromHeader("Basic abc"))
	assert.Empty(t, bearerFromHeader("Bearer"))
	assert.Empty(t, bearerFromHeader(""))
}

func TestRequireBearerToken(t *testing.T) {
	r := gin.New()
	r.GET("/secure", RequireBearerToken(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(BearerTokenKey))
	})

	rec := perform(r, http.MethodGet, "/secure", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(r, http.MethodGet, "/secure", "", map[string]string{"Authorization": "Bearer a.b.c"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a.b.c", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(rateLimitHandler(NewRateLimiter(1, 2), 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", "", nil).Code)

	rec := perform(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(60, 5)
	rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	rl.limiters["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)

	assert.Equal(t, 1, rl.CleanupLimiters(10*time.Minute))
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_RunCleanupStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(60, 5)
	rl.GetLimiter("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunCleanup(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop still running after cancel")
	}
}

func TestRateLimit_UsesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(RateLimit(ctx, 60, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", "", nil).Code)
}

func TestValidateJSON(t *testing.T) {
	r := gin.New()
	r.Use(ValidateJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/x", "name=x", map[string]string{"Content-Type": "text/plain"}).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/x", `{}`, map[string]string{"Content-Type": "application/json; charset=utf-8"}).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/x", "", nil).Code)
}

func TestPaginationDefaults(t *testing.T) {
	r := gin.New()
	r.Use(PaginationDefaults())
	r.GET("/list", func(c *gin.Context) {
		c.String(http.StatusOK, c.Query("page")+"/"+c.Query("limit"))
	})

	assert.Equal(t, "1/10", perform(r, http.MethodGet, "/list", "", nil).Body.String())
	assert.Equal(t, "3/50", perform(r, http.MethodGet, "/list?page=3&limit=500", "", nil).Body.String())
	assert.Equal(t, "1/10", perform(r, http.MethodGet, "/list?page=-2&limit=abc", "", nil).Body.String())
}

type recordedRequest struct {
	method, route string
	status        int
}

type requestRecorder struct{ seen []recordedRequest }

func (r *requestRecorder) RequestObserved(method, route string, status int) {
	r.seen = append(r.seen, recordedRequest{method, route, status})
}

func TestRequestLogger_ReportsRoute(t *testing.T) {
	obs := &requestRecorder{}
	r := gin.New()
	r.Use(RequestLogger(obs))
	r.GET("/api/trails/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, http.MethodGet, "/api/trails/42", "", nil)
	perform(r, http.MethodGet, "/nowhere", "", nil)

	require.Len(t, obs.seen, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/trails/:id", http.StatusNotFound}, obs.seen[0])
	assert.Equal(t, "unmatched", obs.seen[1].route)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
