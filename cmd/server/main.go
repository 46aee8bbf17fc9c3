package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/config"
	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/metrics"
	"github.com/aligeramy/somas/internal/redis"
	"github.com/aligeramy/somas/internal/reminders"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(conn)
	svc := engine.NewService(store)

	notifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("notifier", cfg.Notifier).Msg("notifier init")
	}
	defer notifier.Close()

	var locker reminders.Locker
	if cfg.RedisAddress != "" {
		rdb := redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		defer rdb.Close()
		locker = redis.NewLocker(rdb)
	}

	dispatcher := reminders.NewDispatcher(svc, notifier, locker, cfg.Location)
	scheduler, err := reminders.StartScheduler(cfg.ReminderCron, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("reminder scheduler")
	}

	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware())
	RegisterRoutes(r, cfg, conn, store, svc)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	<-scheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

func newNotifier(cfg *config.Config) (reminders.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierMQTT:
		return reminders.NewMQTTNotifier(cfg.MQTTBrokerURL, "somas-reminders")
	case config.NotifierNATS:
		return reminders.NewNATSNotifier(cfg.NATSURL)
	default:
		return reminders.LogNotifier{}, nil
	}
}
