package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"food-delivery-tracking/config"
	"food-delivery-tracking/handlers"
	"food-delivery-tracking/lifecycle"
	"food-delivery-tracking/logger"
	"food-delivery-tracking/middleware"
	"food-delivery-tracking/monitoring"
	"food-delivery-tracking/notification"
	"food-delivery-tracking/ratelimit"
	"food-delivery-tracking/routes"
	"food-delivery-tracking/statemachine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env == "development")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.New(reg)

	g, gctx := errgroup.WithContext(ctx)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		switch cfg.RateLimit.Backend {
		case "redis":
			rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer rdb.Close()
			limiter = ratelimit.NewRedis(rdb, cfg.App.Name+":ratelimit:", time.Now)
		default:
			mem := ratelimit.NewMemory(time.Now)
			limiter = mem
			g.Go(func() error {
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						mem.Sweep(time.Minute)
					}
				}
			})
		}
	}

	locale := statemachine.ParseLocale(cfg.App.Locale)
	store := notification.NewStore(db)
	generator := notification.NewGenerator(store,
		notification.WithLocale(locale),
		notification.WithLogger(log.Named("notification")),
		notification.WithRetry(cfg.Notification.MaxRetries, cfg.Notification.RetryBase),
		notification.WithCounter(metrics.Notifications),
	)
	svc := lifecycle.NewService(db,
		lifecycle.WithNotifier(generator),
		lifecycle.WithLogger(log.Named("lifecycle")),
		lifecycle.WithTransitionCounter(metrics.Transitions),
		lifecycle.WithOnTimeGrace(cfg.Tracking.OnTimeGrace),
		lifecycle.WithLocale(locale),
	)

	if err := handlers.RegisterValidators(); err != nil {
		return err
	}
	users := middleware.GormUsers(db)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log.Named("http")),
		metrics.Instrument(),
		middleware.Locale(locale),
	)
	routes.SetupRoutes(r, routes.Deps{
		Handler: handlers.New(svc, store, users, log.Named("handlers")),
		Secret:  []byte(cfg.Auth.JWTSecret),
		Users:   users,
		Limiter: middleware.NewRateLimiter(limiter, log.Named("ratelimit"), metrics.RateLimited),
		Metrics: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
