package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/marketsport/rinkside/adapters/events"
	"github.com/marketsport/rinkside/adapters/store"
	"github.com/marketsport/rinkside/adapters/tokenizer"
	"github.com/marketsport/rinkside/config"
	"github.com/marketsport/rinkside/metrics"
	"github.com/marketsport/rinkside/nhl"
	"github.com/marketsport/rinkside/polymarket"
	"github.com/marketsport/rinkside/ports"
	"github.com/marketsport/rinkside/service"
	"github.com/marketsport/rinkside/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	signKey, err := loadSignKey(cfg.Auth.KeyFile, logger)
	if err != nil {
		log.Fatalf("Failed to load signing key: %v", err)
	}

	var (
		authStore ports.Store
		eventPub  ports.EventPublisher
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		authStore = store.NewRedisStore(redisClient)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewSlogLogger(logger),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		logger.Warn("redis disabled, using in-memory store without events")
		authStore = store.NewMemoryStore()
	}

	authService := service.NewAuthService(
		tokenizer.NewJWTTokenizer(signKey),
		authStore,
		eventPub,
		logger,
		service.WithNonceTTL(cfg.Auth.NonceTTL),
		service.WithAccessTTL(cfg.Auth.AccessTTL),
	)

	nhlClient := nhl.NewClient(
		nhl.WithWebBaseURL(cfg.NHL.WebBaseURL),
		nhl.WithStatsBaseURL(cfg.NHL.StatsBaseURL),
		nhl.WithHTTPClient(&nethttp.Client{Timeout: cfg.NHL.Timeout}),
		nhl.WithRateLimit(cfg.NHL.RateLimit, cfg.NHL.RateBurst),
		nhl.WithLogger(logger),
	)
	polyClient := polymarket.NewClient(
		polymarket.WithBaseURL(cfg.Polymarket.GammaAPIURL),
		polymarket.WithHTTPClient(&nethttp.Client{Timeout: cfg.Polymarket.Timeout}),
		polymarket.WithRateLimit(cfg.Polymarket.RateLimit, cfg.Polymarket.RateBurst),
		polymarket.WithLogger(logger),
	)

	router := http.SetupRouter(http.RouterDeps{
		AuthService: authService,
		NHL:         nhlClient,
		Polymarket:  polyClient,
		Metrics:     metrics.NewServerMetrics(),
		Logger:      logger,
	})

	logger.Info("starting server", "addr", cfg.Server.ListenAddr)
	if err := router.Run(cfg.Server.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// loadSignKey reads a PEM-encoded EC private key for ES256 signing. With
// no key file configured a fresh key is generated, which invalidates all
// outstanding tokens on restart.
func loadSignKey(path string, logger *slog.Logger) (*ecdsa.PrivateKey, error) {
	if path == "" {
		logger.Warn("no signing key configured, generating an ephemeral key")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}

	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC private key: %w", err)
	}
	return key, nil
}
