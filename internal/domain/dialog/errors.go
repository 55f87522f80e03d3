package dialog

import (
	"context"
	"errors"

	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

var (
	ErrInvalidPair     = errors.New("a dialog needs two distinct participants")
	ErrInvalidUser     = errors.New("user id must not be empty")
	ErrNotParticipant  = errors.New("user is not a participant of the dialog")
	ErrDialogNotFound  = errors.New("dialog not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyText       = errors.New("message text must not be empty")
	ErrTextTooLong     = errors.New("message text is too long")
	ErrInvalidRankMode = errors.New("unknown dialog ranking filter")
	// ErrDialogConflict signals a lost creation race; the service re-fetches instead of surfacing it.
	ErrDialogConflict = errors.New("dialog for this pair already exists")
)

func validationError(ctx context.Context, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, code)
}

func notParticipantError(ctx context.Context, dialogID uint, user UserID) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
		ErrNotParticipant.Error(), ErrNotParticipant, "dialog-not-participant",
		map[string]any{"dialog_id": dialogID, "user_id": string(user)})
}

func messageNotFoundError(ctx context.Context, dialogID, messageID uint) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		ErrMessageNotFound.Error(), ErrMessageNotFound, "message-not-found",
		map[string]any{"dialog_id": dialogID, "message_id": messageID})
}
