package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingCounter struct{}

func (failingCounter) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis down")
}

func limitedRouter(counter middlewares.Counter, limit int) *gin.Engine {
	rl := middlewares.NewRateLimiter(counter, "register", limit, time.Minute, nil)

	r := gin.New()
	r.POST("/register", rl.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return r
}

func post(r http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	r := limitedRouter(middlewares.NewMemoryCounter(), 2)

	for i := 0; i < 2; i++ {
		if w := post(r); w.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := post(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	r := limitedRouter(failingCounter{}, 1)

	for i := 0; i < 3; i++ {
		if w := post(r); w.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}
}
