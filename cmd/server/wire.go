//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/config"
	domain "jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/infrastructure/auth"
	"jan-server/services/dialog-api/internal/infrastructure/logger"
	repo "jan-server/services/dialog-api/internal/infrastructure/repository/dialog"
	"jan-server/services/dialog-api/internal/interfaces/httpserver"
)

var postgresDialogSet = wire.NewSet(
	newDatabaseConfig,
	newGormDB,
	newReadinessCheck,
	repo.NewRepository,
	repo.NewMessageRepository,
	wire.Bind(new(domain.DialogRepository), new(*repo.Repository)),
	wire.Bind(new(domain.MessageRepository), new(*repo.MessageRepository)),
	newMessagePolicy,
	domain.NewService,
)

// BuildApplication assembles the Postgres-backed dialog service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newAuthValidator,
		postgresDialogSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}
