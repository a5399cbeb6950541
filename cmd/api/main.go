package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/core/cache"
	"cinedeck/internal/core/config"
	"cinedeck/internal/core/logger"
	"cinedeck/internal/core/server"
	"cinedeck/internal/repo"
	"cinedeck/internal/service"
	"cinedeck/internal/tmdb"
	"cinedeck/internal/transport/http/handler"
	"cinedeck/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log, zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	ctx := context.Background()

	// 存储（失败会直接 Fatal）
	kv, closeKV, err := repo.OpenKV(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage open", zap.Error(err))
	}
	store, err := service.Open(ctx, kv, service.Options{HashCost: cfg.Security.BcryptCost}, log)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}

	// JWT
	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("jwt.secret is empty, using a random secret; tokens will not survive a restart")
	}
	jwter := &auth.JWTer{
		Secret: []byte(secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// TMDB（可选 redis 响应缓存）
	respCache := openCache(ctx, cfg, log)
	if cfg.TMDB.APIKey == "" {
		log.Warn("tmdb.apikey is empty, catalog requests will fail")
	}
	catalog := tmdb.New(tmdb.Options{
		BaseURL:  cfg.TMDB.BaseURL,
		APIKey:   cfg.TMDB.APIKey,
		Language: cfg.TMDB.Language,
		Timeout:  time.Duration(cfg.TMDB.TimeoutSec) * time.Second,
		CacheTTL: time.Duration(cfg.TMDB.CacheTTLSec) * time.Second,
		Cache:    respCache,
		Log:      log.Named("tmdb"),
	})

	deps := handler.Deps{Store: store, JWT: jwter, TMDB: catalog, Guard: tmdb.NewGuard(), Log: log}
	reg := router.NewRegistry(handler.Modules(deps)...)

	apiSrv := listen(log, "user api", cfg.App.HTTP.Host, cfg.App.HTTP.Port, "/api/v1", cfg.App.HTTP,
		router.NewAPIEngine(log, cfg.App, jwter, deps.Session, reg))
	adminSrv := listen(log, "admin api", cfg.App.Admin.Host, cfg.App.Admin.Port, "/admin/v1", cfg.App.HTTP,
		router.NewAdminEngine(log, cfg.App, jwter, deps.Session, reg))

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(sctx)
	_ = adminSrv.Shutdown(sctx)
	if err := store.Close(sctx); err != nil {
		log.Error("store close", zap.Error(err))
	}
	if respCache != nil {
		_ = respCache.Close()
	}
	if err := closeKV(); err != nil {
		log.Error("storage close", zap.Error(err))
	}
	log.Info("cinedeck stopped gracefully")
}

func listen(log *zap.Logger, name, host string, port int, prefix string, h config.HTTP, engine http.Handler) *http.Server {
	addr := server.Addr(host, port)
	srv := server.BuildServer(addr, engine, h)
	srv.ErrorLog, _ = logger.ToStdLogger(log, zapcore.WarnLevel)

	baseURL := server.HumanURL(host, port)
	log.Info(name+" starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("base", baseURL+prefix),
	)
	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(name+" start FAILED", zap.Error(err))
		}
	}()
	return srv
}

// openCache 只有配置了 redis 且能连通时才启用缓存
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) *cache.Cache {
	if cfg.TMDB.CacheTTLSec <= 0 || cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("tmdb cache disabled, redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return cache.NewWithClient(rdb, "tmdb:")
}
