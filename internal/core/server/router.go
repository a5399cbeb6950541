package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinedeck/internal/core/config"
)

// NewRouter 创建带 CORS 的 gin 引擎；origins 为空时放开所有来源
func NewRouter(origins []string) *gin.Engine {
	r := gin.New()
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID"}
	r.Use(cors.New(c))
	return r
}

// AccessLogger 是 ginzap 的默认访问日志（admin 引擎使用）
func AccessLogger(l *zap.Logger) gin.HandlerFunc {
	return ginzap.GinzapWithConfig(l, &ginzap.Config{TimeFormat: time.RFC3339, UTC: true, SkipPaths: []string{"/health", "/metrics"}})
}

func BuildServer(addr string, handler http.Handler, c config.HTTP) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    time.Duration(c.ReadTimeoutSec) * time.Second,
		WriteTimeout:   time.Duration(c.WriteTimeoutSec) * time.Second,
		IdleTimeout:    time.Duration(c.IdleTimeoutSec) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// HumanURL 启动日志里可点击的地址
func HumanURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + Addr(host, port)
}
