package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/sellfolio/backend/src/config"
	"github.com/username/sellfolio/backend/src/database"
	"github.com/username/sellfolio/backend/src/handlers"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/parsers"
	"github.com/username/sellfolio/backend/src/services"
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

		if origin == config.Cfg.CORSAllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
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
	logger.L.Info("Sellfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	logger.L.Info("Result cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	reportParser := parsers.NewXLSXReportParser()
	normalizer := parsers.NewNormalizer()
	costParser := parsers.NewCostBookParser()

	reportService := services.NewReportService(reportParser, normalizer, resultCache)
	pricingService := services.NewPricingService(costParser, resultCache)
	exportService := services.NewExportService(pricingService)

	reportHandler := handlers.NewReportHandler(reportService)
	summaryHandler := handlers.NewSummaryHandler(reportService)
	articleHandler := handlers.NewArticleHandler(reportService)
	pricingHandler := handlers.NewPricingHandler(reportService, pricingService, exportService)
	costBookHandler := handlers.NewCostBookHandler(pricingService, exportService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/reports/upload", reportHandler.HandleUpload)
	apiRouter.HandleFunc("GET /api/reports", reportHandler.HandleListReports)
	apiRouter.HandleFunc("GET /api/reports/period", reportHandler.HandleGetPeriod)
	apiRouter.HandleFunc("DELETE /api/reports/{id}", reportHandler.HandleDeleteReport)
	apiRouter.HandleFunc("DELETE /api/reports", reportHandler.HandleClearAll)

	apiRouter.HandleFunc("GET /api/summary", summaryHandler.HandleGetSummary)
	apiRouter.HandleFunc("GET /api/articles", articleHandler.HandleGetArticles)
	apiRouter.HandleFunc("GET /api/articles/{sku}/history", articleHandler.HandleGetHistory)

	apiRouter.HandleFunc("POST /api/costs/upload", costBookHandler.HandleUploadCostBook)
	apiRouter.HandleFunc("GET /api/costs", costBookHandler.HandleGetCostBook)
	apiRouter.HandleFunc("GET /api/costs/export", costBookHandler.HandleExportCostTemplate)

	apiRouter.HandleFunc("GET /api/prices/seed/{sku}", pricingHandler.HandleGetCalculatorSeed)
	apiRouter.HandleFunc("POST /api/prices/solve", pricingHandler.HandleSolvePrice)
	apiRouter.HandleFunc("GET /api/prices/locks", pricingHandler.HandleGetLockedPrices)
	apiRouter.HandleFunc("POST /api/prices/locks", pricingHandler.HandleSetLockedPrice)
	apiRouter.HandleFunc("DELETE /api/prices/locks/{sku}", pricingHandler.HandleRemoveLockedPrice)
	apiRouter.HandleFunc("GET /api/prices/export/lock", pricingHandler.HandleExportAutoPromoLock)
	apiRouter.HandleFunc("GET /api/prices/export/change", pricingHandler.HandleExportPriceChange)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Sellfolio Backend is running"})
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
