package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/dialog-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the dialog domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Dialog{},
		&entities.Message{},
		&entities.DialogFavorite{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
