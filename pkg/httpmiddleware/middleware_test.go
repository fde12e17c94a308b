package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(okHandler(), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRequestID_Generated(t *testing.T) {
	var ctxID string
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFromContext(r.Context())
	}), RequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	headerID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, headerID)
	assert.Equal(t, headerID, ctxID)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	h := Wrap(okHandler(), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", rec.Header().Get("X-Request-ID"))
}

func TestRequestID_RejectsGarbageHeader(t *testing.T) {
	h := Wrap(okHandler(), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad\x00id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "bad\x00id", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), InjectLogger(zap.NewNop()), Recovery())

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	h := Wrap(okHandler(), CORS(CORSConfig{
		AllowOrigins: []string{"https://shop.example.com"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       600,
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	h := Wrap(okHandler(), CORS(CORSConfig{AllowOrigins: []string{"https://shop.example.com"}}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CredentialsEchoOrigin(t *testing.T) {
	h := Wrap(okHandler(), CORS(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimit(t *testing.T) {
	h := Wrap(okHandler(), RateLimit(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFunc: func(*http.Request) string {
			return "client"
		},
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimit_WindowRotates(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: 10 * time.Millisecond})

	now := time.Now()
	_, ok := l.allow("k", now)
	require.True(t, ok)
	_, ok = l.allow("k", now)
	require.False(t, ok)

	_, ok = l.allow("k", now.Add(11*time.Millisecond))
	assert.True(t, ok, "fresh window after rotation")
}

func TestRateLimit_SweepDropsStale(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: 10 * time.Millisecond})
	now := time.Now()
	l.allow("a", now)
	l.allow("b", now)

	l.sweep(now.Add(30 * time.Millisecond))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.windows)
}
