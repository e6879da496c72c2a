package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"

	"github.com/nik132-eng/roastit/internal/config"
	"github.com/nik132-eng/roastit/internal/infra/cache"
	"github.com/nik132-eng/roastit/internal/infra/database"
	"github.com/nik132-eng/roastit/internal/infra/gateway"
	"github.com/nik132-eng/roastit/internal/infra/repository"
	"github.com/nik132-eng/roastit/internal/infra/worker"
	"github.com/nik132-eng/roastit/internal/present/rest"
	authmw "github.com/nik132-eng/roastit/internal/present/rest/middleware"
	"github.com/nik132-eng/roastit/internal/service"
	"github.com/nik132-eng/roastit/internal/usecase"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("ROASTIT_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	conf, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", path), slog.String("error", err.Error()))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.Server.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint, version)
		if err != nil {
			slog.Error("failed to setup trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
			}
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = database.MigratePostgres(db)
	if err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	media, err := gateway.NewMediaGateway(ctx, conf.Media)
	if err != nil {
		slog.Error("failed to setup media store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	roastRepo := repository.NewRoastRepository(db)

	var feedCache usecase.FeedCache
	if conf.Server.MemcachedAddr != "" {
		feedCache = cache.NewFeedCache(database.NewMemcached(conf.Server.MemcachedAddr))
	}

	var publisher usecase.EventPublisher
	var realtime rest.Realtime
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		signalService := service.NewSignalService(rdb)
		publisher = signalService
		realtime = signalService
	}

	postUsecase := usecase.NewPostUsecase(postRepo, media, publisher, feedCache)
	roastUsecase := usecase.NewRoastUsecase(roastRepo, publisher, feedCache)
	feedUsecase := usecase.NewFeedUsecase(postRepo, roastRepo, feedCache)
	userUsecase := usecase.NewUserUsecase(userRepo, postRepo)
	mediaUsecase := usecase.NewMediaUsecase(media, postRepo, conf.Sweep.GracePeriod, nil)

	if conf.Sweep.Enabled {
		if conf.Server.RedisAddr == "" {
			slog.Error("sweep requires redis")
			os.Exit(1)
		}
		w := worker.New(
			database.NewAsynqRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB),
			worker.NewSweepHandler(mediaUsecase, 0),
			conf.Sweep.Interval,
		)
		if err := w.Start(); err != nil {
			slog.Error("failed to start worker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer w.Shutdown()
	}

	authService := service.NewAuthService(conf.Site, userRepo)
	authMiddleware := authmw.NewAuthMiddleware(authService, conf.Site)

	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware(serviceName))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(conf.Server.AllowOrigins)))
	e.Use(middleware.BodyLimit(conf.Server.MaxUploadSize))
	e.Use(authMiddleware.IdentifyCaller)

	writeLimiter := middleware.RateLimiter(
		middleware.NewRateLimiterMemoryStore(rate.Limit(conf.Server.WriteRateLimit)),
	)

	handler := rest.NewHandler(postUsecase, roastUsecase, feedUsecase, userUsecase, realtime)
	handler.RegisterRoutes(e, writeLimiter)

	go func() {
		slog.Info("roastit started", slog.String("addr", conf.Server.ListenAddr), slog.String("version", version))
		if err := e.Start(conf.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
}
