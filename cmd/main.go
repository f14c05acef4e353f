package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"waterme/internal/bot"
	"waterme/internal/client"
	"waterme/internal/configuration"
	"waterme/internal/database"
	"waterme/internal/ingest"
	"waterme/internal/logger"
	"waterme/internal/server"
)

func main() {
	if err := runApp(); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func runApp() error {
	appContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("waterme_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()
	db := database.Database{Database: dbConn.Database(database.Name)}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client:", err)
		}
	}()

	engineBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "evaluation-engine",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	apiClient := client.Client{
		// Headroom above the 30s Telegram long poll.
		Client:        &http.Client{Timeout: 45 * time.Second},
		BotToken:      config.BotToken,
		EngineURL:     config.EngineURL,
		Redis:         redisClient,
		EngineBreaker: engineBreaker,
		Logger:        appLogger,
	}

	wateringBot := bot.NewBot(db, apiClient, apiClient, appLogger)

	appLogger.Info("Starting watering scheduler with interval:", config.NotifyInterval)
	go wateringBot.NotifyAtInterval(appContext, config.NotifyInterval)

	if config.MQTTBrokerURI != "" {
		appLogger.Info("Connecting to MQTT broker at", config.MQTTBrokerURI)
		mqttClient, err := ingest.Connect(appContext, config.MQTTBrokerURI, "waterme-backend")
		if err != nil {
			appLogger.Error("Error connecting to MQTT broker:", err)
			return err
		}
		ing := ingest.Ingestor{Client: mqttClient, Store: db, Logger: appLogger}
		go func() {
			if err := ing.Run(appContext); err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error("Reading ingest stopped:", err)
			}
		}()
	} else {
		appLogger.Info("mqtt_broker_uri not set, reading ingest disabled")
	}

	srv := server.Server{
		DB:                db,
		Bot:               wateringBot,
		Logger:            appLogger,
		AdminPasswordHash: config.AdminPasswordHash,
		AuthSecretKey:     config.AuthSecretKey,
	}
	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	go func() {
		<-appContext.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Error shutting down HTTP server:", err)
		}
	}()
	go func() {
		appLogger.Info("Serving on", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server stopped:", err)
		}
	}()

	appLogger.Info("Starting Telegram command router")
	return wateringBot.Run(appContext)
}
