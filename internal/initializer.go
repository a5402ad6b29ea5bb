// Package internal bootstraps the dashboard service: configuration, database,
// migrations, managers, routing and the HTTP server itself.
package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/badili/odk-dashboard3/internal/config"
	"github.com/badili/odk-dashboard3/internal/managers"
	"github.com/badili/odk-dashboard3/internal/migrations"
	"github.com/badili/odk-dashboard3/internal/routing"
)

const (
	envFile    = ".env"
	configFile = "configs/config.yaml"
)

func Init() {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	setLogLevel(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	if cfg.Auth.SecretKey == "" {
		log.Fatal("AUTH_SECRETKEY not set")
	}

	dsn := databaseDSN(cfg)
	if err = migrations.Run(context.Background(), dsn); err != nil {
		log.Fatal("Error running migrations: ", err)
	}
	log.Info("Applied database migrations")

	pool := initializeDatabase(dsn)
	defer pool.Close()

	databaseMgr := managers.NewDatabaseManager(pool)
	mailMgr := managers.NewMailManager(cfg)
	tokenMgr := managers.NewTokenManager([]byte(cfg.Auth.SecretKey), cfg.TokenTTL())

	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.Auth.KeyPairPath)
	if err != nil {
		log.Fatal("Error initializing JWT manager: ", err)
	}

	router := routing.InitRouter(databaseMgr, mailMgr, jwtMgr, tokenMgr, cfg)
	log.Info("Initialized router")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		<-c
		log.Info("Server shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during shutdown: ", err)
		}
	}()

	log.Infof("Starting server on port %d...", cfg.Port)
	if err = server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Error starting server: ", err)
	}
}

func databaseDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
}

func initializeDatabase(dsn string) *pgxpool.Pool {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}

	log.Info("Connected to database")
	return pool
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)
	log.SetOutput(os.Stdout)
}
