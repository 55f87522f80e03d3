//go:generate swag init --parseInternal -d ../../ -g cmd/server/server.go -o ../../docs/swagger

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/dialog-api/internal/config"
	domain "jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/infrastructure/auth"
	"jan-server/services/dialog-api/internal/infrastructure/database"
	"jan-server/services/dialog-api/internal/infrastructure/logger"
	"jan-server/services/dialog-api/internal/infrastructure/observability"
	repo "jan-server/services/dialog-api/internal/infrastructure/repository/dialog"
	"jan-server/services/dialog-api/internal/interfaces/httpserver"
)

// @title Dialog API
// @version 1.0
// @description Two-party direct messaging service for Jan Server
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

// storage bundles the repositories selected by STORAGE_DRIVER.
type storage struct {
	dialogs  domain.DialogRepository
	messages domain.MessageRepository
	ready    httpserver.ReadinessCheck
	close    func() error
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	store, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("initialize storage")
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}
	defer authValidator.Close()

	dialogService := domain.NewService(store.dialogs, store.messages, newMessagePolicy(cfg), log)

	httpServer := httpserver.New(cfg, log, dialogService, authValidator, store.ready)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		mem := repo.NewMemoryStore()
		return &storage{
			dialogs:  mem.Dialogs(),
			messages: mem.Messages(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := newGormDB(ctx, newDatabaseConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	return &storage{
		dialogs:  repo.NewRepository(db),
		messages: repo.NewMessageRepository(db),
		ready:    newReadinessCheck(db),
		close:    func() error { return database.Close(db) },
	}, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newReadinessCheck(db *gorm.DB) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}

func newMessagePolicy(cfg *config.Config) domain.MessagePolicy {
	return domain.MessagePolicy{MaxLength: cfg.MaxMessageLength}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
