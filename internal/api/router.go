package api

import (
	"io/fs"
	"net/http"

	"github.com/Rrens/chatbot-pro/internal/api/handler"
	customMiddleware "github.com/Rrens/chatbot-pro/internal/api/middleware"
	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"github.com/Rrens/chatbot-pro/internal/metrics"
	"github.com/Rrens/chatbot-pro/internal/security"
	"github.com/Rrens/chatbot-pro/internal/service"
	"github.com/Rrens/chatbot-pro/internal/widget"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Store bundles the repositories of one storage backend
type Store struct {
	DB            handler.Pinger
	Accounts      domain.AccountRepository
	Chatbots      domain.ChatbotRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
	Stats         domain.StatsRepository
}

// Deps holds everything the router wires together. The optional fields are
// left nil when Redis is disabled.
type Deps struct {
	Store  Store
	LLM    *llm.Router
	Widget fs.FS

	Cache       service.ConfigCache
	CachePinger handler.Pinger
	APILimiter  customMiddleware.Limiter
	ChatLimiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
	}
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize services
	store := deps.Store
	modelClient := llm.NewClient(deps.LLM, cfg.Relay.ModelTimeout)

	relayService := service.NewRelayService(store.Chatbots, store.Conversations, store.Messages, modelClient)
	chatbotService := service.NewChatbotService(store.Chatbots, store.Conversations, store.Messages, deps.Cache)
	accountService := service.NewAccountService(store.Accounts, store.Chatbots, deps.Cache, jwtManager)
	dashboardService := service.NewDashboardService(store.Accounts, store.Conversations, store.Stats)

	// Initialize handlers
	publicHandler := handler.NewPublicHandler(relayService, chatbotService)
	authHandler := handler.NewAuthHandler(accountService)
	chatbotHandler := handler.NewChatbotHandler(chatbotService, cfg.Server.PublicURL)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	widgetHandler := widget.NewHandler(deps.Widget, cfg.Widget.CacheMaxAge)

	// Middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	onboardingMiddleware := customMiddleware.NewOnboardingMiddleware(store.Accounts)
	apiLimit := customMiddleware.NewRateLimitMiddleware(deps.APILimiter, customMiddleware.ByAccount, nil)
	chatLimit := customMiddleware.NewRateLimitMiddleware(deps.ChatLimiter, chatKey, handler.RejectTooManyRequests)

	// The widget runs on arbitrary third-party sites
	publicCORS := cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	chatRoutes := func(r chi.Router) {
		r.Use(publicCORS)
		r.With(chatLimit.Limit).Post("/{lookupCode}", publicHandler.Chat)
	}
	configRoutes := func(r chi.Router) {
		r.Use(publicCORS)
		r.Get("/{lookupCode}/config", publicHandler.Config)
	}

	r.Route("/chat", chatRoutes)
	r.Route("/api/chat", chatRoutes)
	r.Route("/chatbot", configRoutes)
	r.Route("/api/chatbot", configRoutes)
	r.Route("/embed", func(r chi.Router) {
		r.Use(publicCORS)
		r.Get("/{lookupCode}.js", widgetHandler.ServeHTTP)
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.DashboardOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(store.DB, deps.CachePinger))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiLimit.Limit)

			r.Get("/me", authHandler.Me)
			r.Post("/onboarding", authHandler.Onboarding)
			r.Put("/account/profile", authHandler.UpdateProfile)
			r.Put("/account/password", authHandler.ChangePassword)
			r.Delete("/account", authHandler.DeleteAccount)

			r.Get("/llm-providers", handler.ListLLMProviders(deps.LLM))

			// Onboarded accounts only
			r.Group(func(r chi.Router) {
				r.Use(onboardingMiddleware.Require)

				r.Get("/dashboard", dashboardHandler.Overview)

				r.Route("/chatbots", func(r chi.Router) {
					r.Get("/", chatbotHandler.List)
					r.Post("/", chatbotHandler.Create)

					r.Route("/{chatbotID}", func(r chi.Router) {
						r.Get("/", chatbotHandler.Get)
						r.Patch("/", chatbotHandler.Update)
						r.Delete("/", chatbotHandler.Delete)
						r.Post("/toggle", chatbotHandler.Toggle)
						r.Get("/embed", chatbotHandler.Embed)
						r.Get("/conversations", chatbotHandler.Conversations)
						r.Get("/conversations/{conversationID}", chatbotHandler.Transcript)
					})
				})
			})
		})
	})

	return r
}

// chatKey limits each client per chatbot
func chatKey(r *http.Request) string {
	return chi.URLParam(r, "lookupCode") + ":" + r.RemoteAddr
}
