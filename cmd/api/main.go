package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/config"
	"github.com/Jeomhps/formation-admin/internal/db"
	"github.com/Jeomhps/formation-admin/internal/images"
	"github.com/Jeomhps/formation-admin/internal/logger"
	"github.com/Jeomhps/formation-admin/internal/middleware"
	"github.com/Jeomhps/formation-admin/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger settings come from config, so this one goes to stderr as-is
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := db.Open(cfg.DBDriver, cfg.DSN(), db.Options{PingAttempts: 60})
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer d.Close()

	// Seed default admin (optional)
	if cfg.AdminDefaultUser != "" && cfg.AdminDefaultPass != "" {
		if err := db.EnsureDefaultAdmin(ctx, d, cfg.AdminDefaultUser, cfg.AdminDefaultPass); err != nil {
			log.Warn("ensure default admin", "err", err)
		}
	}

	var imgs images.Store
	if cfg.MongoURI != "" {
		cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		client, gfs, err := images.Connect(cctx, cfg.MongoURI, cfg.MongoDB, cfg.ImageBucket)
		cancel()
		if err != nil {
			log.Error("image store", "err", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())
		imgs = gfs
	} else {
		log.Warn("MONGO_URI not set; images are kept in memory and lost on restart")
		imgs = images.NewMemory()
	}

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, "login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	gin.SetMode(gin.ReleaseMode)
	r := server.NewRouter(server.Deps{
		DB:             d,
		Images:         imgs,
		Tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Logger:         log,
		Limiter:        limiter,
		SecureCookies:  cfg.Production(),
		PublicBaseURL:  cfg.PublicBaseURL,
		StaticDir:      cfg.StaticDir,
		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("listening", "addr", cfg.Addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "err", err)
	}
}
