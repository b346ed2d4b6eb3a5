package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tunesync/server/internal/controller"
	catalogjson "github.com/tunesync/server/internal/repository/catalog/jsonfile"
	roominmemory "github.com/tunesync/server/internal/repository/room/inmemory"
	streamredis "github.com/tunesync/server/internal/repository/streamcache/redis"
	"github.com/tunesync/server/internal/repository/wssender"
	"github.com/tunesync/server/internal/service/catalog"
	"github.com/tunesync/server/internal/service/room"
	"github.com/tunesync/server/internal/service/stream"
	"github.com/tunesync/server/pkg/ctxlogger"
	"github.com/tunesync/server/pkg/redisclient"
)

type AppConfig struct {
	Host              string  `json:"host"`
	Port              int     `json:"port"`
	LogLevel          string  `json:"log_level"`
	CatalogDir        string  `json:"catalog_dir"`
	CatalogTTLMinutes int     `json:"catalog_ttl_minutes"`
	GithubBaseURL     string  `json:"github_base_url"`
	YtdlpPath         string  `json:"ytdlp_path"`
	CookiesPath       string  `json:"cookies_path"`
	RedisPort         int     `json:"redis_port"`
	RedisHost         string  `json:"redis_host"`
	RedisPassword     string  `json:"-"`
	RateLimitRPS      float64 `json:"rate_limit_rps"`
	BroadcastWorkers  int     `json:"broadcast_workers"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.CatalogDir == "" {
		return fmt.Errorf("catalog dir must be set")
	}
	if cfg.GithubBaseURL == "" {
		return fmt.Errorf("github base url must be set")
	}
	if cfg.CatalogTTLMinutes < 1 {
		return fmt.Errorf("catalog ttl must be at least 1 minute")
	}
	if cfg.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be greater than 0")
	}
	if cfg.BroadcastWorkers < 1 {
		return fmt.Errorf("broadcast workers must be at least 1")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	catalogRepo, err := catalogjson.NewRepo(cfg.CatalogDir, time.Duration(cfg.CatalogTTLMinutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	defer catalogRepo.Close()

	catalogService := catalog.NewService(catalogRepo, cfg.GithubBaseURL)

	streamCache := streamredis.NewRepo(rc, 10*time.Minute)
	streamService := stream.NewService(streamCache, cfg.YtdlpPath, cfg.CookiesPath)
	if version, err := streamService.Version(ctx); err != nil {
		logger.Warn("yt-dlp not available, youtube endpoints will fail", "error", err)
	} else {
		logger.Info("yt-dlp found", "version", version)
	}

	sender := wssender.NewRepo(cfg.BroadcastWorkers)
	defer sender.Close()

	roomRepo := roominmemory.NewRepo()
	roomService := room.NewService(roomRepo, sender)

	controller := controller.NewController(roomService, catalogService, streamService, sender, cfg.RateLimitRPS, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
