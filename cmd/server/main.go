package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"

	"github.com/magma-studio/atelier/internal/analytics"
	"github.com/magma-studio/atelier/internal/auth"
	"github.com/magma-studio/atelier/internal/config"
	"github.com/magma-studio/atelier/internal/contact"
	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/data"
	"github.com/magma-studio/atelier/internal/handler"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/service"
	"github.com/magma-studio/atelier/internal/store"
	"github.com/magma-studio/atelier/internal/view"
	"github.com/magma-studio/atelier/web"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure ATELIER_SESSION_SECRETKEY environment variable.")
	}
	if cfg.Admin.Password == "" {
		log.Fatal(errors.New("admin password not set"), "Please set a secure ATELIER_ADMIN_PASSWORD environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.Storage, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.Storage)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := newSessionManager(cfg, db)

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewStaticAuthenticator(cfg.Admin)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	oidcClient, err := auth.NewOIDCClient(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize OIDC client")
	}
	enforcer, err := auth.NewEnforcer(cfg.Storage.Driver, cfg.Storage.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Content Store Hydration ---
	log.Info("Hydrating content store...")
	kv := data.NewKV(db)
	contentStore, err := store.New(kv, log)
	if err != nil {
		log.Fatal(err, "Failed to hydrate content store")
	}
	log.Info("Content store ready.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	contentService := service.NewContentService(contentStore)
	contactService := contact.NewService(kv, time.Duration(cfg.Contact.MinFillSeconds)*time.Second)
	injector := analytics.NewInjector()

	defaultLocale, err := content.ParseLocale(cfg.Site.DefaultLocale)
	if err != nil {
		log.Fatal(err, "Invalid default locale")
	}

	siteHandler := handler.NewSiteHandler(contentService, contactService, injector, sessionManager, viewService, log)
	adminHandler := handler.NewAdminHandler(contentService, contactService, injector, sessionManager, viewService, log)
	seoHandler := handler.NewSEOHandler(contentService, cfg.Site.BaseURL)
	authHandler := handler.NewAuthHandler(authenticator, oidcClient, sessionManager, contentService, viewService, log)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(siteHandler, adminHandler, seoHandler, authHandler, sessionManager, authzMiddleware, defaultLocale, viewService, log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newSessionManager configures scs over the same database the content
// lives in, with the session store matching the configured driver.
func newSessionManager(cfg *config.Config, db *sqlx.DB) *scs.SessionManager {
	sessionManager := scs.New()
	if cfg.Storage.Driver == "mysql" {
		sessionManager.Store = mysqlstore.New(db.DB)
	} else {
		sessionManager.Store = sqlite3store.New(db.DB)
	}
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled
	return sessionManager
}
