package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func corsRequest(t *testing.T, policy *CORSPolicy, origin string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(policy.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSPolicy_OnlyAllowsWhitelistedOrigins(t *testing.T) {
	policy := NewCORSPolicy([]string{"http://localhost:5173"})

	w := corsRequest(t, policy, "http://localhost:5173")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want whitelisted origin", got)
	}

	w = corsRequest(t, policy, "http://evil.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q for unknown origin, want empty", got)
	}
}

func TestCORSPolicy_UpdateTakesEffect(t *testing.T) {
	policy := NewCORSPolicy([]string{"http://localhost:5173"})

	w := corsRequest(t, policy, "http://app.coursehub.dev")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Allow-Origin = %q before update, want empty", got)
	}

	policy.Update([]string{"http://app.coursehub.dev"})

	w = corsRequest(t, policy, "http://app.coursehub.dev")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.coursehub.dev" {
		t.Errorf("Allow-Origin = %q after update, want new origin", got)
	}
	if policy.Allowed("http://localhost:5173") {
		t.Error("old origin should be dropped by Update")
	}
}

func TestRateLimiter_DeniesOverQuota(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("a") {
		t.Error("third request should be denied")
	}
	// 其它主体不受影响
	if !limiter.Allow("b") {
		t.Error("another key should have its own quota")
	}
}

func TestRateLimiter_UpdateResetsQuota(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	limiter.Allow("a")
	if limiter.Allow("a") {
		t.Fatal("second request should be denied before update")
	}

	limiter.Update(5, time.Minute)
	for i := 0; i < 5; i++ {
		if !limiter.Allow("a") {
			t.Fatalf("request %d should pass under the new quota", i+1)
		}
	}
}

func TestRateLimiter_MiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, time.Minute)

	router := gin.New()
	router.Use(limiter.Middleware(func(c *gin.Context) string { return "fixed" }))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
}
