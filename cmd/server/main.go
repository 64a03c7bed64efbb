package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Rrens/chatbot-pro/internal/api"
	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"github.com/Rrens/chatbot-pro/internal/llm/anthropic"
	"github.com/Rrens/chatbot-pro/internal/llm/gemini"
	"github.com/Rrens/chatbot-pro/internal/llm/ollama"
	"github.com/Rrens/chatbot-pro/internal/llm/openai"
	"github.com/Rrens/chatbot-pro/internal/logger"
	"github.com/Rrens/chatbot-pro/internal/repository/postgres"
	"github.com/Rrens/chatbot-pro/internal/repository/redis"
	"github.com/Rrens/chatbot-pro/internal/repository/sqlite"
	"github.com/Rrens/chatbot-pro/internal/widget"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logCloser, err := logger.Setup(cfg.Logging, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if envLoaded != "" {
		log.Info().Str("path", envLoaded).Msg("Loaded .env")
	} else {
		log.Warn().Msg(".env file not found in any standard location")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting ChatBot Pro server")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Initialize storage
	store, storeCloser, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer storeCloser.Close()

	deps := api.Deps{
		Store:  store,
		LLM:    newLLMRouter(cfg.LLM),
		Widget: widget.Source(cfg.Widget.TemplateDir),
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		deps.Cache = redis.NewConfigCache(redisClient, cfg.Security.ConfigCacheTTL)
		deps.CachePinger = redisClient
		deps.APILimiter = redis.NewRateLimiter(
			redisClient,
			"api",
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		deps.ChatLimiter = redis.NewRateLimiter(
			redisClient,
			"chat",
			cfg.Security.ChatRateLimit.RequestsPerMinute,
			cfg.Security.ChatRateLimit.Burst,
		)
	} else {
		log.Warn().Msg("Redis disabled: config cache and rate limiting are off")
	}

	// Initialize router
	router := api.NewRouter(cfg, deps)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openStore connects the configured backend and returns its repositories
func openStore(ctx context.Context, cfg config.DatabaseConfig) (api.Store, io.Closer, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return api.Store{}, nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}

		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return api.Store{}, nil, err
		}
		return api.Store{
			DB:            db,
			Accounts:      sqlite.NewAccountRepository(db),
			Chatbots:      sqlite.NewChatbotRepository(db),
			Conversations: sqlite.NewConversationRepository(db),
			Messages:      sqlite.NewMessageRepository(db),
			Stats:         sqlite.NewStatsRepository(db),
		}, db, nil

	case "postgres", "":
		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DSN()); err != nil {
				return api.Store{}, nil, err
			}
		}

		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return api.Store{}, nil, err
		}
		return api.Store{
			DB:            db,
			Accounts:      postgres.NewAccountRepository(db),
			Chatbots:      postgres.NewChatbotRepository(db),
			Conversations: postgres.NewConversationRepository(db),
			Messages:      postgres.NewMessageRepository(db),
			Stats:         postgres.NewStatsRepository(db),
		}, db, nil

	default:
		return api.Store{}, nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// newLLMRouter registers every provider that has credentials
func newLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(openai.NewDeepSeekProvider(cfg.DeepSeek))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama))
	}

	if _, err := router.GetProvider(""); err != nil {
		log.Warn().Err(err).Msg("Default model provider unavailable, every chat will get the fallback reply")
	}
	return router
}
