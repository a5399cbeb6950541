package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/core/config"
	"cinedeck/internal/core/server"
	"cinedeck/internal/domain"
	mdw "cinedeck/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, app config.App, jwter *auth.JWTer, session mdw.SessionFunc, reg *Registry) *gin.Engine {
	h := app.HTTP
	r := server.NewRouter(app.CORSOrigins)

	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(h.RateLimitRPS), h.RateLimitBurst),
		mdw.MaxBodyBytes(h.MaxBodyBytes),
		mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second),
		mdw.Metrics("admin"),
		server.AccessLogger(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, session, string(domain.RoleAdmin), false))
	reg.MountAdmin(admin)

	return r
}
