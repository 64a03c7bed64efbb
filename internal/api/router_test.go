package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/chatbot-pro/internal/api"
	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"github.com/Rrens/chatbot-pro/internal/repository/sqlite"
	"github.com/Rrens/chatbot-pro/internal/service"
	"github.com/Rrens/chatbot-pro/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (p *stubProvider) Name() string              { return "stub" }
func (p *stubProvider) AvailableModels() []string { return []string{"stub-1"} }
func (p *stubProvider) DefaultModel() string      { return "stub-1" }
func (p *stubProvider) IsConfigured() bool        { return true }

func (p *stubProvider) Generate(_ context.Context, prompt string, _ string) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.reply, Model: "stub-1"}, nil
}

// memoryCache is a map-backed ConfigCache
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]domain.PublicConfig
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]domain.PublicConfig)}
}

func (c *memoryCache) Get(_ context.Context, lookupCode string) (*domain.PublicConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.entries[lookupCode]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (c *memoryCache) Set(_ context.Context, lookupCode string, cfg *domain.PublicConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[lookupCode] = *cfg
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, lookupCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, lookupCode)
	return nil
}

func (c *memoryCache) has(lookupCode string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[lookupCode]
	return ok
}

type testServer struct {
	handler  http.Handler
	provider *stubProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithCache(t, nil)
}

func newTestServerWithCache(t *testing.T, cache service.ConfigCache) *testServer {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	provider := &stubProvider{reply: "**Sure!** We ship worldwide."}
	router := llm.NewRouter("stub")
	router.RegisterProvider(provider)

	cfg := &config.Config{}
	cfg.Server.PublicURL = "https://chat.example.com"
	cfg.Server.MiddlewareTimeout = 10 * time.Second
	cfg.Auth.JWTSecret = "router-test-secret"
	cfg.Auth.AccessTokenTTL = time.Minute
	cfg.Auth.RefreshTokenTTL = time.Hour
	cfg.Relay.ModelTimeout = 2 * time.Second
	cfg.Widget.CacheMaxAge = time.Hour
	cfg.CORS.DashboardOrigins = []string{"http://localhost:3000"}

	h := api.NewRouter(cfg, api.Deps{
		Store: api.Store{
			DB:            db,
			Accounts:      sqlite.NewAccountRepository(db),
			Chatbots:      sqlite.NewChatbotRepository(db),
			Conversations: sqlite.NewConversationRepository(db),
			Messages:      sqlite.NewMessageRepository(db),
			Stats:         sqlite.NewStatsRepository(db),
		},
		LLM:    router,
		Widget: widget.Assets(),
		Cache:  cache,
	})

	return &testServer{handler: h, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// signUp registers, logs in and optionally onboards an account, returning its access token
func (s *testServer) signUp(t *testing.T, email string, onboard bool) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Jamie",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &tokens)

	if onboard {
		rec = s.do(t, http.MethodPost, "/api/v1/onboarding", tokens.AccessToken, map[string]string{
			"business_name":   "Acme Shoes",
			"product_count":   "11-50",
			"referral_source": "Social Media",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	return tokens.AccessToken
}

type chatbotDTO struct {
	ID         string `json:"id"`
	LookupCode string `json:"lookup_code"`
	IsActive   bool   `json:"is_active"`
}

func (s *testServer) createChatbot(t *testing.T, token string) chatbotDTO {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/chatbots", token, map[string]string{
		"name":            "Ava",
		"primary_color":   "#3B82F6",
		"welcome_message": "Hi! How can I help you today?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var bot chatbotDTO
	decodeData(t, rec, &bot)
	return bot
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatbotsRequireOnboarding(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "new@example.com", false)

	rec := s.do(t, http.MethodGet, "/api/v1/chatbots", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "onboarding required")

	rec = s.do(t, http.MethodGet, "/api/v1/chatbots", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "dup@example.com", false)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Jamie",
		"email":    "DUP@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateChatbotValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)

	rec := s.do(t, http.MethodPost, "/api/v1/chatbots", token, map[string]string{
		"name":            "Ava",
		"primary_color":   "blue",
		"welcome_message": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "PrimaryColor")
	assert.Contains(t, rec.Body.String(), "WelcomeMessage")
}

func TestPublicConfig(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)
	bot := s.createChatbot(t, token)

	for _, prefix := range []string{"/api/chatbot/", "/chatbot/"} {
		rec := s.do(t, http.MethodGet, prefix+bot.LookupCode+"/config", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var cfg map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
		assert.Equal(t, bot.ID, cfg["id"])
		assert.Equal(t, "Ava", cfg["name"])
		assert.Equal(t, "#3B82F6", cfg["primaryColor"])
		assert.Equal(t, "Hi! How can I help you today?", cfg["welcomeMessage"])
		assert.Equal(t, true, cfg["isActive"])
		assert.Len(t, cfg, 5)
	}

	rec := s.do(t, http.MethodGet, "/api/chatbot/doesnotexist/config", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Chatbot not found or inactive"}`, rec.Body.String())
}

func TestChatRelay(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)
	bot := s.createChatbot(t, token)
	chatPath := "/api/chat/" + bot.LookupCode

	t.Run("reply", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, chatPath, "", map[string]string{
			"message":   "Do you ship abroad?",
			"sessionId": "session_abc_1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"**Sure!** We ship worldwide.","success":true}`, rec.Body.String())
	})

	t.Run("history is replayed", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/chat/"+bot.LookupCode, "", map[string]string{
			"message":   "How long does it take?",
			"sessionId": "session_abc_1",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		last := s.provider.prompts[len(s.provider.prompts)-1]
		assert.Contains(t, last, "Business context: Acme Shoes")
		assert.Contains(t, last, "Customer: Do you ship abroad?\nAssistant: **Sure!** We ship worldwide.\n")
		assert.True(t, strings.HasSuffix(last, "Customer: How long does it take?\nAssistant:"))
	})

	t.Run("missing fields", func(t *testing.T) {
		bodies := []any{
			map[string]string{"message": "hi"},
			map[string]string{"sessionId": "s"},
			map[string]string{"message": "   ", "sessionId": "s"},
			map[string]string{"message": "hi", "sessionId": strings.Repeat("s", service.MaxSessionIDLength+1)},
			map[string]string{"message": strings.Repeat("a", 17<<10), "sessionId": "s"},
			"not json",
		}
		for _, body := range bodies {
			rec := s.do(t, http.MethodPost, chatPath, "", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Message and sessionId are required"}`, rec.Body.String())
		}
	})

	t.Run("unknown chatbot", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/chat/unknowncode1", "", map[string]string{
			"message":   "hi",
			"sessionId": "s",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Chatbot not found or inactive"}`, rec.Body.String())
	})

	t.Run("model failure falls back", func(t *testing.T) {
		s.provider.mu.Lock()
		s.provider.err = errors.New("upstream unavailable")
		s.provider.mu.Unlock()
		defer func() {
			s.provider.mu.Lock()
			s.provider.err = nil
			s.provider.mu.Unlock()
		}()

		rec := s.do(t, http.MethodPost, chatPath, "", map[string]string{
			"message":   "Anyone there?",
			"sessionId": "session_fallback",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message string `json:"message"`
			Success bool   `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, service.FallbackMessage, body.Message)
	})

	t.Run("conversations and transcript", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/chatbots/"+bot.ID+"/conversations", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var conversations []struct {
			ID           string `json:"id"`
			SessionID    string `json:"session_id"`
			MessageCount int    `json:"message_count"`
		}
		decodeData(t, rec, &conversations)
		require.Len(t, conversations, 2)

		counts := map[string]int{}
		var mainID string
		for _, c := range conversations {
			counts[c.SessionID] = c.MessageCount
			if c.SessionID == "session_abc_1" {
				mainID = c.ID
			}
		}
		assert.Equal(t, 4, counts["session_abc_1"])
		// The fallback reply is never stored
		assert.Equal(t, 1, counts["session_fallback"])

		rec = s.do(t, http.MethodGet, "/api/v1/chatbots/"+bot.ID+"/conversations/"+mainID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var transcript struct {
			Messages []struct {
				Role        string `json:"role"`
				ContentHTML string `json:"content_html"`
			} `json:"messages"`
		}
		decodeData(t, rec, &transcript)
		require.Len(t, transcript.Messages, 4)
		assert.Equal(t, "visitor", transcript.Messages[0].Role)
		assert.Equal(t, "assistant", transcript.Messages[1].Role)
		assert.Equal(t, "<strong>Sure!</strong> We ship worldwide.", transcript.Messages[1].ContentHTML)
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var overview struct {
			Stats struct {
				TotalChatbots      int `json:"total_chatbots"`
				TotalConversations int `json:"total_conversations"`
				VisitorMessages    int `json:"visitor_messages"`
				AssistantMessages  int `json:"assistant_messages"`
			} `json:"stats"`
			ResponseRate int `json:"response_rate"`
		}
		decodeData(t, rec, &overview)
		assert.Equal(t, 1, overview.Stats.TotalChatbots)
		assert.Equal(t, 2, overview.Stats.TotalConversations)
		assert.Equal(t, 3, overview.Stats.VisitorMessages)
		assert.Equal(t, 2, overview.Stats.AssistantMessages)
		assert.Equal(t, 67, overview.ResponseRate)
	})

	t.Run("inactive chatbot stops serving", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/chatbots/"+bot.ID+"/toggle", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var toggled chatbotDTO
		decodeData(t, rec, &toggled)
		assert.False(t, toggled.IsActive)

		rec = s.do(t, http.MethodPost, chatPath, "", map[string]string{"message": "hi", "sessionId": "s2"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/chatbot/"+bot.LookupCode+"/config", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestChatAcceptsLongestSessionID(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)
	bot := s.createChatbot(t, token)

	rec := s.do(t, http.MethodPost, "/api/chat/"+bot.LookupCode, "", map[string]string{
		"message":   "hi",
		"sessionId": strings.Repeat("s", service.MaxSessionIDLength),
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestChatbotsAreScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp(t, "owner@example.com", true)
	other := s.signUp(t, "other@example.com", true)
	bot := s.createChatbot(t, owner)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/chatbots/" + bot.ID},
		{http.MethodPost, "/api/v1/chatbots/" + bot.ID + "/toggle"},
		{http.MethodDelete, "/api/v1/chatbots/" + bot.ID},
		{http.MethodGet, "/api/v1/chatbots/" + bot.ID + "/conversations"},
	} {
		rec := s.do(t, tc.method, tc.path, other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/chatbots", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []chatbotDTO
	decodeData(t, rec, &list)
	assert.Empty(t, list)
}

func TestEmbedSnippetAndScript(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)
	bot := s.createChatbot(t, token)

	rec := s.do(t, http.MethodGet, "/api/v1/chatbots/"+bot.ID+"/embed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var embed struct {
		Snippet string `json:"snippet"`
	}
	decodeData(t, rec, &embed)
	assert.Equal(t, `<script src="https://chat.example.com/embed/`+bot.LookupCode+`.js" async></script>`, embed.Snippet)

	rec = s.do(t, http.MethodGet, "/embed/"+bot.LookupCode+".js", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "ChatWidget")
}

func TestPublicCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/abcDEF123456", nil)
	req.Header.Set("Origin", "https://shop.example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/chatbot/abcDEF123456/config", nil)
	req.Header.Set("Origin", "https://shop.example.org")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "owner@example.com", true)

	rec := s.do(t, http.MethodPut, "/api/v1/account/password", token, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/account/password", token, map[string]string{
		"current_password": "secret123",
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/account", token, map[string]string{
		"confirm_text": "delete",
		"password":     "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/account", token, map[string]string{
		"confirm_text": "DELETE",
		"password":     "newsecret",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedAccountConfigNotServedFromCache(t *testing.T) {
	cache := newMemoryCache()
	s := newTestServerWithCache(t, cache)
	token := s.signUp(t, "owner@example.com", true)
	bot := s.createChatbot(t, token)

	rec := s.do(t, http.MethodGet, "/chatbot/"+bot.LookupCode+"/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, cache.has(bot.LookupCode))

	rec = s.do(t, http.MethodDelete, "/api/v1/account", token, map[string]string{
		"confirm_text": "DELETE",
		"password":     "secret123",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.False(t, cache.has(bot.LookupCode))

	rec = s.do(t, http.MethodGet, "/chatbot/"+bot.LookupCode+"/config", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Chatbot not found or inactive"}`, rec.Body.String())
}
