package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pulseai-labs/anomaly-hub/internal/core"
	"github.com/pulseai-labs/anomaly-hub/internal/engine"
	"github.com/pulseai-labs/anomaly-hub/internal/storage"
	"github.com/pulseai-labs/anomaly-hub/pkg/logger"
)

func main() {
	configPath := os.Getenv("HUB_CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/hub.yaml"
	}

	config, err := core.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Config load failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(config.App.LogLevel); err != nil {
		fmt.Printf("Logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var sink engine.AuditSink
	var db *storage.PostgresClient
	if config.DatabaseEnabled() {
		db, err = storage.NewPostgresClient(config.GetDatabaseURL())
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.Health(ctx); err != nil {
			cancel()
			logger.Fatal("database health check failed", zap.Error(err))
		}
		cancel()
		sink = db
		logger.Info("audit sink enabled")
	} else {
		logger.Info("audit sink disabled, no database configured")
	}

	registry := engine.NewRegistry(config.EngineTunables())

	if config.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), ginLogger())

	router.GET("/health", healthHandler(db, config))
	router.GET("/ready", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/agents/:id/detect", detectHandler(registry, sink))
		v1.POST("/agents/:id/forecast", forecastHandler(config.Engine.ARIMASeasonLength))
	}

	srv := &http.Server{
		Addr:           config.Server.Addr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("HTTP server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	srv.Shutdown(shutdownCtx)
	if db != nil {
		db.Close()
	}
}

func ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func healthHandler(db *storage.PostgresClient, config *core.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   config.App.Version,
		})
	}
}

func readyHandler(db *storage.PostgresClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now().Format(time.RFC3339)})
	}
}

// detectRequest is the HTTP shape of one Sample, used instead of
// engine.Sample directly so bad JSON never leaks engine-internal field
// names into an error response.
type detectRequest struct {
	Timestamp   string            `json:"timestamp"`
	CPU         float64           `json:"cpu"`
	Memory      float64           `json:"memory"`
	DiskIO      float64           `json:"disk_io"`
	NetworkSent float64           `json:"network_sent"`
	NetworkRecv float64           `json:"network_recv"`
	Logs        []engine.LogEntry `json:"logs"`
	RunDD       *bool             `json:"run_dd"`
	RunFD       *bool             `json:"run_fd"`
}

func detectHandler(registry *engine.Registry, sink engine.AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID := c.Param("id")

		var req detectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		runDD, runFD := true, true
		if req.RunDD != nil {
			runDD = *req.RunDD
		}
		if req.RunFD != nil {
			runFD = *req.RunFD
		}

		sample := engine.Sample{
			AgentID:     agentID,
			Timestamp:   req.Timestamp,
			CPU:         req.CPU,
			Memory:      req.Memory,
			DiskIO:      req.DiskIO,
			NetworkSent: req.NetworkSent,
			NetworkRecv: req.NetworkRecv,
			Logs:        req.Logs,
		}

		result := engine.DetectWithAudit(c.Request.Context(), registry, sink, sample, runDD, runFD)
		c.JSON(http.StatusOK, result)
	}
}

type forecastRequest struct {
	ForecastHours int                   `json:"forecast_hours"`
	Series        []engine.MetricSeries `json:"series"`
}

func forecastHandler(seasonLength int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forecastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		hours := req.ForecastHours
		if hours <= 0 {
			hours = 2
		}
		result := engine.BatchForecast(req.Series, hours, seasonLength)
		c.JSON(http.StatusOK, result)
	}
}
