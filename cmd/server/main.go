package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-sync-server/internal/config"
	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/handler"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/repository"
	"pos-sync-server/internal/service"
	"pos-sync-server/internal/websocket"
	"pos-sync-server/pkg/response"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	localDB, err := repository.OpenLocal(cfg.LocalDB.Path)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer localDB.Close()

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.RemoteDB.User,
		cfg.RemoteDB.Password,
		cfg.RemoteDB.Host,
		cfg.RemoteDB.Port,
	)

	remoteClient, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to remote store: %v", err)
	}

	// The remote may be unreachable at boot; the outbox absorbs that. Only
	// ensure the mirror database exists when the remote answers.
	if exists, err := remoteClient.DBExists(context.Background(), cfg.RemoteDB.Name); err != nil {
		log.Printf("Remote store unreachable at startup (queued writes will retry): %v", err)
	} else if !exists {
		if err := remoteClient.CreateDB(context.Background(), cfg.RemoteDB.Name); err != nil {
			log.Fatalf("Failed to create remote database: %v", err)
		}
		log.Printf("Created remote database: %s", cfg.RemoteDB.Name)
	}

	userRepo := repository.NewUserRepository(localDB)
	sessionRepo := repository.NewSessionRepository(localDB)
	productRepo := repository.NewProductRepository(localDB)
	outboxRepo := repository.NewOutboxRepository(localDB)
	remoteProductRepo := repository.NewRemoteProductRepository(remoteClient, cfg.RemoteDB.Name)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler())
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	realtimeService := service.NewRealtimeService(wsManager)
	productService := service.NewProductService(productRepo, realtimeService)
	syncService := service.NewSyncService(productRepo, outboxRepo, remoteProductRepo, cfg.Sync.MaxAttempts)

	syncWorker := service.NewSyncWorker(syncService, cfg.Sync.Interval, cfg.Sync.MaxBatch)
	syncWorker.Start()

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/pin-login", authHandler.PinLogin).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/me", userHandler.GetMe).Methods("GET", "OPTIONS")

	protected.HandleFunc("/products", productHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/products/{id}", productHandler.Get).Methods("GET", "OPTIONS")

	// Mutations are admin-only; cashiers read.
	adminOnly := protected.PathPrefix("/products").Subrouter()
	adminOnly.Use(middleware.RequireRole(domain.RoleAdmin))
	adminOnly.HandleFunc("", productHandler.Create).Methods("POST", "OPTIONS")
	adminOnly.HandleFunc("/{id}", productHandler.Update).Methods("PUT", "OPTIONS")
	adminOnly.HandleFunc("/{id}", productHandler.Delete).Methods("DELETE", "OPTIONS")

	// Account user management is admin-only.
	adminUsers := protected.PathPrefix("/users").Subrouter()
	adminUsers.Use(middleware.RequireRole(domain.RoleAdmin))
	adminUsers.HandleFunc("", userHandler.List).Methods("GET", "OPTIONS")
	adminUsers.HandleFunc("", userHandler.Create).Methods("POST", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler(syncService)).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting POS Sync Server on %s (env: %s)", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop scheduling first; an in-flight batch still runs to completion.
	syncWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// healthHandler reports local health only: the remote mirror being down is a
// normal condition the outbox absorbs, surfaced here as queue depth.
func healthHandler(syncService *service.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depth, err := syncService.QueueDepth(r.Context())
		if err != nil {
			response.InternalError(w, "local store unavailable")
			return
		}
		response.Success(w, map[string]interface{}{
			"status":        "healthy",
			"pending_syncs": depth,
			"time":          time.Now().UTC(),
		})
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"POS Sync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/signup":"POST","/api/v1/auth/login":"POST","/api/v1/auth/refresh":"POST","/api/v1/products":"GET/POST (protected)","/ws":"WebSocket (ultra plan)"}}`))
}
