package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/yusufkecer/fitcoach-backend/internal/coachapi"
	"github.com/yusufkecer/fitcoach-backend/internal/config"
	"github.com/yusufkecer/fitcoach-backend/internal/db"
	"github.com/yusufkecer/fitcoach-backend/internal/handler"
	"github.com/yusufkecer/fitcoach-backend/internal/imagehost"
	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
	"github.com/yusufkecer/fitcoach-backend/internal/logging"
	"github.com/yusufkecer/fitcoach-backend/internal/middleware"
	"github.com/yusufkecer/fitcoach-backend/internal/repository"
	"github.com/yusufkecer/fitcoach-backend/internal/service"
)

const (
	mealPlanCacheBytes = 16 << 20
	shutdownTimeout    = 10 * time.Second
)

func main() {
	cfg := config.Load()

	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogJSON,
	})
	log.Warnf("---->> running in [%s] environment", cfg.Environment)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable must be set")
	}
	if cfg.EmailAPIKey == "" {
		log.Errorf("email API key not set, use RESEND_API_KEY to enable password reset mails")
	}
	if cfg.CloudinaryCloudName == "" {
		log.Errorf("cloudinary cloud name not set, food image analysis is disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("database connection failed: %s", err)
	}
	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("migrations failed: %s", err)
	}

	profileRepo := repository.NewProfileRepository(database)
	historyRepo := repository.NewHistoryRepository(database)
	accountRepo := repository.NewAccountRepository(database)
	resetTokenRepo := repository.NewResetTokenRepository(database)
	mealRepo := repository.NewMealRepository(database)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := instrumentation.NewManager("fitcoach", "backend", reg)

	emailService := service.NewEmailService(cfg.EmailAPIKey, cfg.EmailFrom, cfg.EmailBaseURL, &http.Client{Timeout: 15 * time.Second})
	profiles := service.NewProfileService(profileRepo, historyRepo)
	meals := service.NewMealService(mealRepo)
	auth := service.NewAuthService(accountRepo, resetTokenRepo, emailService)

	coach := coachapi.NewClient(
		cfg.BackendURL,
		&http.Client{Timeout: cfg.BackendTimeout},
		freecache.NewCache(mealPlanCacheBytes),
	).WithObserver(metrics)
	images := imagehost.NewClient(
		cfg.CloudinaryURL,
		cfg.CloudinaryCloudName,
		cfg.CloudinaryUploadPreset,
		&http.Client{Timeout: 30 * time.Second},
	)

	clientIPs, err := middleware.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("TRUSTED_PROXIES: %s", err)
	}

	routerCfg := handler.RouterConfig{
		ClientIPs:         clientIPs,
		JWTSecret:         cfg.JWTSecret,
		APIKey:            cfg.APIKey,
		AllowedOrigins:    cfg.AllowedOrigins,
		Instrumentation:   metrics,
		PrometheusHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	var (
		rdb                *redis.Client
		resetPerEmailLimit middleware.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
		limiter := redis_rate.NewLimiter(rdb)
		routerCfg.LoginLimiter = middleware.NewRedisLimiter(limiter, "login", 5, 15*time.Minute)
		routerCfg.ForgotLimiter = middleware.NewRedisLimiter(limiter, "forgot", 3, time.Hour)
		routerCfg.ResetLimiter = middleware.NewRedisLimiter(limiter, "reset-ip", 5, 15*time.Minute)
		routerCfg.APILimiter = middleware.NewRedisLimiter(limiter, "api", 120, time.Minute)
		resetPerEmailLimit = middleware.NewRedisLimiter(limiter, "reset-email", 5, 15*time.Minute)
	} else {
		log.Debugln("redis not configured, rate limits are kept in memory")
		routerCfg.LoginLimiter = middleware.NewWindowLimiter(5, 15*time.Minute)
		routerCfg.ForgotLimiter = middleware.NewWindowLimiter(3, time.Hour)
		routerCfg.ResetLimiter = middleware.NewWindowLimiter(5, 15*time.Minute)
		routerCfg.APILimiter = middleware.NewWindowLimiter(120, time.Minute)
		resetPerEmailLimit = middleware.NewWindowLimiter(5, 15*time.Minute)
	}

	authHandler := handler.NewAuthHandler(cfg.JWTSecret, profiles, auth, metrics).
		WithResetLimiter(resetPerEmailLimit)
	r := handler.NewRouter(routerCfg, handler.Handlers{
		Auth:    authHandler,
		Users:   handler.NewUserHandler(profiles),
		Meals:   handler.NewMealHandler(meals, metrics),
		Metrics: handler.NewMetricHandler(),
		Coach:   handler.NewCoachHandler(coach, images, profiles, meals),
	})

	httpServer := &http.Server{
		Handler:      r,
		Addr:         ":" + cfg.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 30*time.Second,
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof(" > server listening on: [%s]", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	shutdownCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()

	err = httpServer.Shutdown(shutdownCtx)
	authHandler.Wait()
	err = multierr.Append(err, database.Close())
	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	if err != nil {
		log.Errorf(" >>> shutdown: %s", err)
	}
	log.Warnln("server shut down")
}
