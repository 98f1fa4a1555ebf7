package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-middleware-testing")
}

func protectedRouter() *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"subject": GetSubject(c),
			"name":    GetName(c),
			"role":    GetRole(c),
		})
	})
	return router
}

func TestAuthRequired_NoHeader(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_InvalidFormat(t *testing.T) {
	router := protectedRouter()

	testCases := []string{
		"InvalidToken",
		"Basic token123",
		"Bearer",
	}

	for _, authHeader := range testCases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	token, err := utils.GenerateToken("user_2abc", "Ada Lovelace", "admin", 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var gotSubject, gotRole string
	router := gin.New()
	router.Use(AuthRequired())
	router.GET("/protected", func(c *gin.Context) {
		gotSubject = GetSubject(c)
		gotRole = GetRole(c)
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if gotSubject != "user_2abc" {
		t.Errorf("subject = %q, want %q", gotSubject, "user_2abc")
	}
	if gotRole != "admin" {
		t.Errorf("role = %q, want %q", gotRole, "admin")
	}
}

func TestAuthOptional_Anonymous(t *testing.T) {
	var gotSubject string
	router := gin.New()
	router.Use(AuthOptional())
	router.GET("/public", func(c *gin.Context) {
		gotSubject = GetSubject(c)
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/public", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("anonymous request should pass, got %d", w.Code)
	}
	if gotSubject != "" {
		t.Errorf("anonymous subject should be empty, got %q", gotSubject)
	}
}

func TestAuthOptional_WithToken(t *testing.T) {
	token, err := utils.GenerateToken("user_2abc", "Ada", "user", 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var gotSubject string
	router := gin.New()
	router.Use(AuthOptional())
	router.GET("/public", func(c *gin.Context) {
		gotSubject = GetSubject(c)
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if gotSubject != "user_2abc" {
		t.Errorf("subject = %q, want %q", gotSubject, "user_2abc")
	}
}

func TestAuthOptional_BadTokenStillPasses(t *testing.T) {
	router := gin.New()
	router.Use(AuthOptional())
	router.GET("/public", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("bad token on optional route should pass anonymously, got %d", w.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		setRole  bool
		wantCode int
	}{
		{"no role", "", false, http.StatusForbidden},
		{"user role", "user", true, http.StatusForbidden},
		{"admin role", "admin", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.setRole {
					c.Set(ContextRole, tt.role)
				}
				c.Next()
			})
			router.Use(AdminRequired())
			router.GET("/admin", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/admin", nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestContextAccessors(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if s := GetSubject(c); s != "" {
		t.Errorf("expected empty subject, got %q", s)
	}
	if n := GetName(c); n != "" {
		t.Errorf("expected empty name, got %q", n)
	}
	if r := GetRole(c); r != "" {
		t.Errorf("expected empty role, got %q", r)
	}

	c.Set(ContextSubject, "user_2abc")
	c.Set(ContextName, "Ada")
	c.Set(ContextRole, "admin")

	if s := GetSubject(c); s != "user_2abc" {
		t.Errorf("subject = %q", s)
	}
	if n := GetName(c); n != "Ada" {
		t.Errorf("name = %q", n)
	}
	if r := GetRole(c); r != "admin" {
		t.Errorf("role = %q", r)
	}
}
