package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/core/config"
	"cinedeck/internal/core/server"
	mdw "cinedeck/internal/transport/http/middleware"
)

// NewAPIEngine 面向前端的公共接口；token 可选，需要登录的动作自己声明 Auth
func NewAPIEngine(l *zap.Logger, app config.App, jwter *auth.JWTer, session mdw.SessionFunc, reg *Registry) *gin.Engine {
	h := app.HTTP
	r := server.NewRouter(app.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimitPerIP(rate.Limit(h.RateLimitRPS), h.RateLimitBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(h.MaxInFlight),
		mdw.MaxBodyBytes(h.MaxBodyBytes),
		mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second),
		mdw.Metrics("api"),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")
	api.Use(mdw.AuthJWT(jwter, session, "", true))
	reg.MountAPI(api)

	return r
}
