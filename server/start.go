package server

import (
	"os"

	"notes-app/auth"
	cachepackage "notes-app/cache"
	"notes-app/config"
	"notes-app/database"
	"notes-app/handlers"
	"notes-app/sessions"
	"notes-app/views"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func StartServer(cfg config.Config) {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Notes App...")

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize session cache
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	renderer, err := views.New()
	if err != nil {
		logger.Error("Failed to parse templates", zap.Error(err))
		os.Exit(1)
	}

	sessionManager := sessions.NewManager(cache, sessions.Options{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	notesHandler := handlers.NewNotesHandler(
		database.NewStore(dbConn),
		sessionManager,
		auth.NewHasher(cfg.BcryptCost),
		renderer,
	)

	// pages enforce login themselves so anonymous callers get a redirect, not a 401
	server := httpserver.New(cfg.Port, nil)

	for _, route := range notesHandler.Routes() {
		server.Register(httpserver.Route{
			Name:     route.Name,
			Method:   route.Method,
			Path:     route.Path,
			AuthType: "none",
		}, route.Handler)
	}

	logger.Info("Notes App started", zap.String("port", cfg.Port))

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
