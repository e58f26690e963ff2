package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerlens/src/config"
	"github.com/username/ledgerlens/src/database"
	"github.com/username/ledgerlens/src/handlers"
	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/processors"
	"github.com/username/ledgerlens/src/security"
	"github.com/username/ledgerlens/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
			"http://localhost:5173": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("LedgerLens backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(authService)

	categorizer := processors.NewCategorizer(processors.DefaultCategoryRules)
	projectExtractor := processors.NewProjectExtractor(processors.DefaultProjectKeywords)

	ingestionService := services.NewIngestionService(
		categorizer, projectExtractor,
		config.Cfg.BankSectionPrefix, config.Cfg.BalanceAdjustment,
		config.Cfg.SampleDataPath,
		reportCache,
		time.Now,
	)
	insightService := services.NewInsightService(
		ingestionService, config.Cfg.GeminiAPIKey, config.Cfg.GeminiModel, reportCache,
	)
	reminderService := services.NewReminderService(
		ingestionService,
		config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey,
		config.Cfg.SenderEmail, config.Cfg.SenderName,
		config.Cfg.ReminderMinDays,
	)

	uploadHandler := handlers.NewUploadHandler(ingestionService)
	dashboardHandler := handlers.NewDashboardHandler(ingestionService)
	txHandler := handlers.NewTransactionHandler(ingestionService)
	receivablesHandler := handlers.NewReceivablesHandler(ingestionService, reminderService)
	insightHandler := handlers.NewInsightHandler(insightService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)

	// Auth actions router - POST routes generally need CSRF
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))

	// Apply CSRF to the entire authActionRouter group
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", handlers.CSRFMiddleware()(authActionRouter)))

	// CSRF and Auth middleware for protected API routes
	csrfProtection := handlers.CSRFMiddleware()
	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("POST /api/upload", applyCsrfAndAuth(uploadHandler.HandleUpload))
	apiRouter.Handle("POST /api/upload/sample", applyCsrfAndAuth(uploadHandler.HandleLoadSample))
	apiRouter.Handle("GET /api/dashboard/summary", applyCsrfAndAuth(dashboardHandler.HandleGetFinancialData))
	apiRouter.Handle("GET /api/dashboard/categories", applyCsrfAndAuth(dashboardHandler.HandleGetCategories))
	apiRouter.Handle("GET /api/dashboard/projects", applyCsrfAndAuth(dashboardHandler.HandleGetProjects))
	apiRouter.Handle("GET /api/dashboard/monthly", applyCsrfAndAuth(dashboardHandler.HandleGetMonthly))
	apiRouter.Handle("GET /api/dashboard/meta", applyCsrfAndAuth(dashboardHandler.HandleGetDatasetMeta))
	apiRouter.Handle("GET /api/transactions", applyCsrfAndAuth(txHandler.HandleGetTransactions))
	apiRouter.Handle("PATCH /api/transactions/{id}/category", applyCsrfAndAuth(txHandler.HandleUpdateCategory))
	apiRouter.Handle("GET /api/transactions/export", applyCsrfAndAuth(txHandler.HandleExportCSV))
	apiRouter.Handle("GET /api/dashboard/receivables", applyCsrfAndAuth(receivablesHandler.HandleGetReceivables))
	apiRouter.Handle("POST /api/receivables/remind", applyCsrfAndAuth(receivablesHandler.HandleSendReminders))
	apiRouter.Handle("GET /api/insights", applyCsrfAndAuth(insightHandler.HandleGetInsights))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "LedgerLens Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
