package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seniorsync/internal/alert"
	"seniorsync/internal/backend"
	"seniorsync/internal/config"
	"seniorsync/internal/database"
	httpapi "seniorsync/internal/http"
	"seniorsync/internal/llm"
	"seniorsync/internal/logger"
	"seniorsync/internal/repository"
	"seniorsync/internal/service"
	"seniorsync/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env 可选
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "seniorsync")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis unavailable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	kv := store.NewRedisKV(redisClient)
	events := store.NewStreamPublisher(redisClient, 10000)

	var db *sql.DB
	var reportsRepo repository.HealthReportsRepository
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			if err := database.EnsureSchema(ctx, d); err != nil {
				log.Warn("Ensure schema failed", zap.Error(err))
			}
			db = d
			log.Info("DB enabled for seniorsync")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if db != nil {
		reportsRepo = repository.NewPostgresHealthReportsRepository(db)
	} else {
		reportsRepo = repository.NewMemoryHealthReportsRepository()
	}

	chatClient, err := llm.NewFactory(cfg.LLM).CreateClient(cfg.LLM.Provider)
	if err != nil {
		log.Fatal("LLM client init failed", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}

	var channels []alert.Notifier
	if cfg.Telegram.BotToken != "" {
		if tg, err := alert.NewTelegramBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID); err == nil {
			channels = append(channels, tg)
		} else {
			log.Warn("Telegram bot init failed", zap.Error(err))
		}
	}
	var mqttClient *alert.MQTTClient
	if cfg.MQTT.Enabled {
		if c, err := alert.NewMQTTClient(&cfg.MQTT); err == nil {
			mqttClient = c
			channels = append(channels, alert.NewMQTT(c, cfg.MQTT.Topic, cfg.MQTT.QoS))
		} else {
			log.Warn("MQTT connect failed, alerts will skip MQTT", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		}
	}
	dispatcher := alert.NewDispatcher(log, channels...)
	log.Info("Alert channels configured", zap.Strings("channels", dispatcher.Channels()))

	location := cfg.HealthCheck.Location()
	reports := service.NewReportService(reportsRepo, backend.NewElderCare(cfg.ElderCare.BackendURL, 10*time.Second), location, log)
	checks := service.NewHealthCheckService(cfg.HealthCheck, kv, chatClient, dispatcher, reports, events, log)

	router := httpapi.NewRouter(cfg.HTTP.BasePath, log)
	router.RegisterHealthRoutes()
	router.RegisterChatRoutes(httpapi.NewChatHandler(service.NewCompanionChatService(chatClient, log), log))
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(service.NewAlertService(dispatcher), log))
	router.RegisterReportRoutes(httpapi.NewReportHandler(reports, log))
	router.RegisterHealthCheckRoutes(httpapi.NewHealthCheckHandler(checks, log))

	var reminder *service.Reminder
	if cfg.Reminder.Enabled {
		reminder = service.NewReminder(cfg.Reminder.Cron, location, reports, dispatcher, log)
		if err := reminder.Start(); err != nil {
			log.Error("Reminder not started", zap.Error(err))
			reminder = nil
		}
	}

	srv := service.NewServer(cfg.HTTP, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
		cancel()
	}

	if err := srv.Stop(context.Background()); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	if reminder != nil {
		reminder.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = database.Close(db)
	}
}
