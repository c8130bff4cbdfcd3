// Package server wires the stores, ledgers, and background workers into
// an http.Handler.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/backup"
	"github.com/larderhq/larder/internal/config"
	"github.com/larderhq/larder/internal/fridge"
	"github.com/larderhq/larder/internal/fridgesync"
	"github.com/larderhq/larder/internal/grocery"
	"github.com/larderhq/larder/internal/handler"
	"github.com/larderhq/larder/internal/middleware"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/push"
	"github.com/larderhq/larder/internal/recipe"
	"github.com/larderhq/larder/internal/recipeai"
	"github.com/larderhq/larder/internal/store"
	ws "github.com/larderhq/larder/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH    *handler.AuthHandler
	groceryH *handler.GroceryHandler
	fridgeH  *handler.FridgeHandler
	recipeH  *handler.RecipeHandler
	aiH      *handler.AIHandler
	pushH    *handler.PushHandler

	tokens      *auth.TokenManager
	rateLimiter *middleware.RateLimiter

	backupManager *backup.Manager
	pushScheduler *push.Scheduler

	logger *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	pantryStore := store.NewPantryStore(db)
	groceryStore := store.NewGroceryStore(db)
	fridgeStore := store.NewFridgeStore(db)
	recipeStore := store.NewRecipeStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	resolver := pantry.NewResolver(pantryStore)
	fridgeLedger := fridge.NewLedger(fridgeStore, resolver)
	syncer := fridgesync.New(fridgeLedger)
	groceryLedger := grocery.NewLedger(groceryStore, resolver, syncer)
	recipeSvc := recipe.NewService(recipeStore, resolver, pantryStore, groceryLedger, fridgeLedger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var aiClient *recipeai.Client
	if cfg.AI.Enabled() {
		aiClient = recipeai.NewClient(cfg.AI)
	}

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if cfg.Push.Enabled() {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
		pushSched = push.NewScheduler(pushSvc, pushStore, fridgeStore,
			cfg.Push.ExpiryWindow, cfg.Push.CheckInterval, logger.With("component", "push"))
	}

	backupMgr := backup.NewManager(cfg.Backup, cfg.DB.Path, db, backupStore, logger, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.LastError,
			},
		})
	})

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		groceryH:      handler.NewGroceryHandler(groceryLedger, hub),
		fridgeH:       handler.NewFridgeHandler(fridgeLedger, hub),
		recipeH:       handler.NewRecipeHandler(recipeSvc, hub),
		aiH:           handler.NewAIHandler(aiClient, fridgeLedger),
		pushH:         handler.NewPushHandler(pushStore, pushSvc),
		tokens:        tokens,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// BackupManager returns the backup manager so main can start and stop it.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the expiry-notice scheduler, nil when push is not
// configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))

	// The websocket handshake authenticates itself via token query param.
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.tokens))

	// Bearer-authenticated API
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)
	outerMux.Handle("/api/", middleware.RequireAuth(s.tokens)(apiMux))

	chain := middleware.RequestID(
		middleware.RequestLogger(s.logger.With("component", "http"))(outerMux))
	return chain
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimitedHandler throttles unauthenticated endpoints per client IP.
func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateMe)
	mux.HandleFunc("PUT /api/me/password", s.authH.UpdatePassword)

	mux.HandleFunc("GET /api/grocery", s.groceryH.List)
	mux.HandleFunc("POST /api/grocery", s.groceryH.Create)
	mux.HandleFunc("PATCH /api/grocery/{id}", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/grocery/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/grocery/{id}/toggle", s.groceryH.Toggle)

	mux.HandleFunc("GET /api/fridge", s.fridgeH.List)
	mux.HandleFunc("POST /api/fridge", s.fridgeH.Create)
	mux.HandleFunc("PUT /api/fridge/{id}", s.fridgeH.Update)
	mux.HandleFunc("DELETE /api/fridge/{id}", s.fridgeH.Delete)

	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/with-availability", s.recipeH.ListWithAvailability)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/recipes/{id}/add-to-grocery", s.recipeH.AddToGrocery)

	mux.HandleFunc("POST /api/ai/recipes/generate", s.aiH.Generate)

	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
}
