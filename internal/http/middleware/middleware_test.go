package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitdex_battle/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticParser map[string]string

func (p staticParser) Parse(token string) (string, error) {
	id, ok := p[token]
	if !ok {
		return "", errors.New("bad token")
	}
	return id, nil
}

type countingToucher struct{ ids []string }

func (t *countingToucher) Touch(_ context.Context, id string) error {
	t.ids = append(t.ids, id)
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuth(t *testing.T) {
	touch := &countingToucher{}
	r := gin.New()
	r.GET("/me", Auth(staticParser{"good": "u1"}, touch), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"не bearer", "Basic good", http.StatusUnauthorized},
		{"чужой токен", "Bearer bad", http.StatusUnauthorized},
		{"валидный", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
	assert.Equal(t, []string{"u1"}, touch.ids)
}

func TestRateLimiter_DisabledPassesEverything(t *testing.T) {
	l := NewRateLimiter(nil, 1, nil, nil)
	assert.False(t, l.Enabled())

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRateLimiter_FailsOpenWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := NewRateLimiter(rdb, 1, nil, nil)
	require.True(t, l.Enabled())

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/users/1", "/users/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "fitdex_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "route" {
					counts[lp.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 2.0, counts["/users/:id"])
	assert.Equal(t, 1.0, counts["unmatched"])
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://app.fitdex.io"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.fitdex.io")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.fitdex.io", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
