package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/transport/http/ez"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT_BindsToSession(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "cinedeck", TTL: time.Hour}
	current := struct {
		uid  int64
		role string
	}{uid: 2, role: "regular"}
	session := func() (int64, string, bool) { return current.uid, current.role, current.uid != 0 }

	r := gin.New()
	r.GET("/me", AuthJWT(j, session, "", false), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", c.GetInt64(ez.KeyUID))
	})
	r.GET("/open", AuthJWT(j, session, "", true), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", c.GetInt64(ez.KeyUID))
	})
	r.GET("/admin", AuthJWT(j, session, "admin", false), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	tok, err := j.Issue(2, "regular")
	require.NoError(t, err)
	withTok := func(path string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return req
	}

	assert.Equal(t, "2", serve(r, withTok("/me")).Body.String())
	assert.Contains(t, serve(r, httptest.NewRequest(http.MethodGet, "/me", nil)).Body.String(), `"code":401`)
	assert.Equal(t, "0", serve(r, httptest.NewRequest(http.MethodGet, "/open", nil)).Body.String())
	assert.Contains(t, serve(r, withTok("/admin")).Body.String(), `"code":403`)

	// 会话切换到其他账号后旧 token 失效
	current.uid = 3
	assert.Contains(t, serve(r, withTok("/me")).Body.String(), "session ended")
	current.uid = 0
	assert.Contains(t, serve(r, withTok("/open")).Body.String(), "session ended")
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := func(ip string) string {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = ip + ":1234"
		return serve(r, rq).Body.String()
	}
	assert.Equal(t, "ok", req("10.0.0.1"))
	assert.Equal(t, "ok", req("10.0.0.1"))
	assert.Contains(t, req("10.0.0.1"), `"code":429`)
	assert.Equal(t, "ok", req("10.0.0.2"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Contains(t, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Body.String(), `"code":504`)
	assert.Equal(t, "ok", serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Body.String())
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(KeyRequestID, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Contains(t, w.Body.String(), `"code":500`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 10
	assert.Contains(t, serve(r, req).Body.String(), "too large")
}

func TestRequestID_RejectsControlChars(t *testing.T) {
	assert.True(t, validRequestID("req-42"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("a\nb"))
	assert.False(t, validRequestID(strings.Repeat("x", 65)))
}

func TestAccessLog_MasksSecretsAndRaisesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store write failed"))
		c.String(http.StatusOK, "envelope")
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/search?q=dune&api_key=abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, 2, logs.Len())

	first := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	ctx := first.ContextMap()
	assert.Equal(t, "/search", ctx["path"])
	assert.Equal(t, map[string]any{"q": "dune", "api_key": "****"}, ctx["query"])

	second := logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, second.Level)
	assert.Contains(t, second.ContextMap()["errors"], "store write failed")
}

func TestBearer(t *testing.T) {
	tok, ok := bearer("bearer  abc.def ")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)
	_, ok = bearer("Basic abc")
	assert.False(t, ok)
	_, ok = bearer("Bearer ")
	assert.False(t, ok)
}
