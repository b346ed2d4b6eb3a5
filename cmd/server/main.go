package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tunesync/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 3000,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	catalogDir = configVar[string]{
		envKey:       "SERVER_CATALOG_DIR",
		flagKey:      "catalog-dir",
		defaultValue: "./consolidated_music/metadata",
	}
	catalogTTL = configVar[int]{
		envKey:       "SERVER_CATALOG_TTL_MINUTES",
		flagKey:      "catalog-ttl-minutes",
		defaultValue: 5,
	}
	githubBaseURL = configVar[string]{
		envKey:       "SERVER_GITHUB_BASE_URL",
		flagKey:      "github-base-url",
		defaultValue: "https://raw.githubusercontent.com/faizalmsdev/audio-player/master/public/consolidated_music/songs",
	}
	ytdlpPath = configVar[string]{
		envKey:       "SERVER_YTDLP_PATH",
		flagKey:      "ytdlp-path",
		defaultValue: "yt-dlp",
	}
	cookiesPath = configVar[string]{
		envKey:       "SERVER_COOKIES_PATH",
		flagKey:      "cookies-path",
		defaultValue: "./cookies.txt",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	rateLimitRPS = configVar[float64]{
		envKey:       "SERVER_RATE_LIMIT_RPS",
		flagKey:      "rate-limit-rps",
		defaultValue: 25,
	}
	broadcastWorkers = configVar[int]{
		envKey:       "SERVER_BROADCAST_WORKERS",
		flagKey:      "broadcast-workers",
		defaultValue: 8,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(catalogDir.flagKey, catalogDir.defaultValue, "Directory holding the catalog JSON documents")
	pflag.Int(catalogTTL.flagKey, catalogTTL.defaultValue, "Catalog cache ttl in minutes")
	pflag.String(githubBaseURL.flagKey, githubBaseURL.defaultValue, "Base URL audio files are served from")
	pflag.String(ytdlpPath.flagKey, ytdlpPath.defaultValue, "Path to the yt-dlp binary")
	pflag.String(cookiesPath.flagKey, cookiesPath.defaultValue, "Path to the yt-dlp cookies file")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Float64(rateLimitRPS.flagKey, rateLimitRPS.defaultValue, "Per-IP request rate limit")
	pflag.Int(broadcastWorkers.flagKey, broadcastWorkers.defaultValue, "Websocket broadcast worker count")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(catalogDir.flagKey, catalogDir.envKey)
	viper.BindEnv(catalogTTL.flagKey, catalogTTL.envKey)
	viper.BindEnv(githubBaseURL.flagKey, githubBaseURL.envKey)
	viper.BindEnv(ytdlpPath.flagKey, ytdlpPath.envKey)
	viper.BindEnv(cookiesPath.flagKey, cookiesPath.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(rateLimitRPS.flagKey, rateLimitRPS.envKey)
	viper.BindEnv(broadcastWorkers.flagKey, broadcastWorkers.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(catalogDir.flagKey, catalogDir.defaultValue)
	viper.SetDefault(catalogTTL.flagKey, catalogTTL.defaultValue)
	viper.SetDefault(githubBaseURL.flagKey, githubBaseURL.defaultValue)
	viper.SetDefault(ytdlpPath.flagKey, ytdlpPath.defaultValue)
	viper.SetDefault(cookiesPath.flagKey, cookiesPath.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(rateLimitRPS.flagKey, rateLimitRPS.defaultValue)
	viper.SetDefault(broadcastWorkers.flagKey, broadcastWorkers.defaultValue)

	config := &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		CatalogDir:        viper.GetString(catalogDir.flagKey),
		CatalogTTLMinutes: viper.GetInt(catalogTTL.flagKey),
		GithubBaseURL:     viper.GetString(githubBaseURL.flagKey),
		YtdlpPath:         viper.GetString(ytdlpPath.flagKey),
		CookiesPath:       viper.GetString(cookiesPath.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
		RateLimitRPS:      viper.GetFloat64(rateLimitRPS.flagKey),
		BroadcastWorkers:  viper.GetInt(broadcastWorkers.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
