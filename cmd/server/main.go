package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dk2904/aircraft-factory/internal/adapter/handler"
	"github.com/dk2904/aircraft-factory/internal/adapter/storage"
	"github.com/dk2904/aircraft-factory/internal/auth"
	"github.com/dk2904/aircraft-factory/internal/core/service"
	"github.com/dk2904/aircraft-factory/internal/port"
)

func main() {
	godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(envString("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", envString("MYSQL_DSN", "root:root@tcp(localhost:3306)/aircraft?parseTime=true"))
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	db.SetMaxOpenConns(envInt("DB_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(envInt("DB_MAX_IDLE_CONNS", 25))
	db.SetConnMaxLifetime(time.Duration(envInt("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Info("connected to mysql")

	// Redis is an optional accelerator; the service runs without it.
	var cache port.Cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     envString("REDIS_ADDR", "localhost:6379"),
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("redis unavailable, running without cache: %v", err)
	} else {
		cache = storage.NewRedisCache(rdb)
		log.Info("connected to redis")
	}

	store := storage.NewMySQLStore(db)
	tokens := auth.NewTokenManager(
		envString("API_SECRET", "aircraft-factory-secret"),
		time.Duration(envInt("TOKEN_HOUR_LIFESPAN", 24))*time.Hour,
	)

	manufacturingService := service.NewManufacturingService(store, cache)
	departmentService := service.NewDepartmentService(store)
	authService := service.NewAuthService(store, tokens)

	h := handler.NewHTTPHandler(manufacturingService, departmentService, authService, log)
	authMW := handler.NewAuthMiddleware(store, cache, tokens, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/auth/login", h.Login)
	mux.HandleFunc("/api/manufacturing/part/create", authMW.Wrap(h.ManufacturePart))
	mux.HandleFunc("/api/manufacturing/part/list", authMW.Wrap(h.PartSummary))
	mux.HandleFunc("/api/manufacturing/part/recycle", authMW.Wrap(h.RecyclePart))
	mux.HandleFunc("/api/manufacturing/plane/create", authMW.Wrap(h.ManufacturePlane))
	mux.HandleFunc("/api/manufacturing/plane/list", authMW.Wrap(h.ListPlaneInventory))
	mux.HandleFunc("/api/manufacturing/plane/recycle", authMW.Wrap(h.RecyclePlane))
	mux.HandleFunc("/api/manufacturing/plane/assemble-history", authMW.Wrap(h.AssemblyHistory))
	mux.HandleFunc("/api/department/list", authMW.Wrap(h.DepartmentList))

	httpServer := &http.Server{
		Addr:    envString("HTTP_ADDR", ":8080"),
		Handler: handler.RequestID(mux),
	}

	go func() {
		log.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
