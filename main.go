package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"carnet-pac/internal/maintenance/application"
	maintenance "carnet-pac/internal/maintenance/domain"
	"carnet-pac/internal/maintenance/infrastructure/postgres"
	"carnet-pac/internal/maintenance/infrastructure/sqlite"
	carnethttp "carnet-pac/internal/maintenance/interfaces/http"
	"carnet-pac/internal/observability/metrics"
	"carnet-pac/internal/registry"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	reg, err := registry.Load(cfg.RegistryConfigPath)
	if err != nil {
		logger.Fatalf("registry config error: %v", err)
	}

	ctx := context.Background()
	var store maintenance.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("postgres store error: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		sqliteStore, err := sqlite.NewStore(cfg.DBPath)
		if err != nil {
			logger.Fatalf("sqlite store error: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	svc, err := application.NewService(store, reg, application.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("maintenance service error: %v", err)
	}
	if err := svc.Load(ctx); err != nil {
		logger.Fatalf("maintenance load error: %v", err)
	}

	machinesHandler := carnethttp.NewMachinesHandler(svc)
	mux := http.NewServeMux()
	mux.Handle("/api/machines", machinesHandler)
	mux.Handle("/api/machines/", machinesHandler)
	mux.Handle("/api/stats", carnethttp.NewStatsHandler(svc, reg))
	mux.Handle("/api/config", carnethttp.NewConfigHandler(reg))
	mux.Handle("/api/report", carnethttp.NewReportHandler(svc, application.SystemClock{}))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	HTTPAddr           string
	DBPath             string
	DatabaseURL        string
	RegistryConfigPath string
}

func loadConfig() config {
	return config{
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		DBPath:             getenvDefault("CARNET_DB_PATH", "var/carnet.db"),
		DatabaseURL:        getenvDefault("DATABASE_URL", ""),
		RegistryConfigPath: getenvDefault("CARNET_REGISTRY_CONFIG", ""),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
