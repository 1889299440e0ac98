package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasklist/backend/models"
	"tasklist/backend/services"
	"tasklist/backend/testutils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthService struct {
	services.AuthServiceInterface
	claims *services.JWTClaims
	err    error
}

func (f *fakeAuthService) ValidateToken(string) (*services.JWTClaims, error) {
	return f.claims, f.err
}

func principalEcho(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID.String(), "username": principal.Username})
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		auth       *fakeAuthService
		wantStatus int
	}{
		{
			name:       "Missing Header",
			auth:       &fakeAuthService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong Scheme",
			header:     "Basic abc",
			auth:       &fakeAuthService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Invalid Token",
			header:     "Bearer bad",
			auth:       &fakeAuthService{err: services.ErrInvalidToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Valid Token",
			header: "Bearer good",
			auth: &fakeAuthService{claims: &services.JWTClaims{
				UserID:   userID,
				Username: "testuser1",
			}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/protected", AuthMiddleware(tt.auth), principalEcho)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
				assert.Contains(t, w.Body.String(), "testuser1")
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestGetPrincipal(t *testing.T) {
	w := httptest.NewRecorder()
	c := testutils.GetTestGinContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, ok := GetPrincipal(c)
	assert.False(t, ok)

	c.Set(userIDKey, "not-a-uuid")
	_, ok = GetPrincipal(c)
	assert.False(t, ok)

	principal := models.Principal{UserID: uuid.New(), Username: "testuser1"}
	testutils.WithPrincipal(principal)(c)
	got, ok := GetPrincipal(c)
	require.True(t, ok)
	assert.Equal(t, principal, got)
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("Any Origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware("*"))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://anywhere.test")
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Listed Origins", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware("http://app.test, http://admin.test"))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://admin.test")
		router.ServeHTTP(w, req)
		assert.Equal(t, "http://admin.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(LoggerMiddleware(log))
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db unavailable"))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"path":"/boom"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, "db unavailable")
}

type fakeLimiter struct {
	allowed int
	calls   int
	err     error
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, limit int, window time.Duration) (*RateLimitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	remaining := f.allowed - f.calls
	if remaining < 0 {
		return &RateLimitResult{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(window), Limit: limit}, nil
	}
	return &RateLimitResult{Allowed: true, Remaining: remaining, ResetAt: time.Now().Add(window), Limit: limit}, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := &fakeLimiter{allowed: 2}
	router := gin.New()
	router.POST("/login", RateLimitMiddleware(limiter, 2, time.Minute, testutils.QuietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	router := gin.New()
	router.POST("/login", RateLimitMiddleware(limiter, 1, time.Minute, testutils.QuietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedisRateLimiter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, "test:")
	_, err := limiter.Allow(context.Background(), "key", 1, time.Minute)
	assert.Error(t, err)
}
