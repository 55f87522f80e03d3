package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isCheckViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}

func invalidPair(ctx context.Context, a, b domain.UserID, cause error) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeValidation,
		domain.ErrInvalidPair.Error(), fmt.Errorf("%w: %w", domain.ErrInvalidPair, cause), "dialog-invalid-pair",
		map[string]any{"user_a": string(a), "user_b": string(b)})
}

func dialogNotFound(ctx context.Context, fields map[string]any) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		domain.ErrDialogNotFound.Error(), domain.ErrDialogNotFound, "dialog-not-found", fields)
}

func messageNotFound(ctx context.Context, id uint) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("message not found: %d", id), domain.ErrMessageNotFound, "message-not-found",
		map[string]any{"message_id": id})
}

func notParticipant(ctx context.Context, dialogID uint, user domain.UserID) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeForbidden,
		domain.ErrNotParticipant.Error(), domain.ErrNotParticipant, "dialog-not-participant",
		map[string]any{"dialog_id": dialogID, "user_id": string(user)})
}

func dialogConflict(ctx context.Context, a, b domain.UserID, cause error) error {
	var err error = domain.ErrDialogConflict
	if cause != nil {
		err = fmt.Errorf("%w: %w", domain.ErrDialogConflict, cause)
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
		domain.ErrDialogConflict.Error(), err, "dialog-create-conflict",
		map[string]any{"user_a": string(a), "user_b": string(b)})
}

func databaseError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}
