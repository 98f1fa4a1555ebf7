package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/run", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimit_WithinBurst(t *testing.T) {
	router := limitedRouter(NewRateLimiter(10, 10))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/run", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d within burst: expected %d, got %d", i+1, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimit_BurstExceeded(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 2))

	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/run", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 1))

	// First IP spends its burst.
	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("POST", "/run", nil)
	req1.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(w1, req1)
	if w1.Code != http.StatusOK {
		t.Fatalf("first IP: expected %d, got %d", http.StatusOK, w1.Code)
	}

	// A different IP has its own bucket.
	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("POST", "/run", nil)
	req2.RemoteAddr = "10.0.0.2:12345"
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Errorf("second IP: expected %d, got %d", http.StatusOK, w2.Code)
	}
}
