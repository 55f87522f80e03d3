package dialog

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

// Service describes the business logic surface for dialogs and their messages.
type Service interface {
	CreateDialog(ctx context.Context, creator, other UserID) (*Dialog, bool, error)
	GetDialog(ctx context.Context, dialogID uint, user UserID) (*Dialog, error)
	ListDialogs(ctx context.Context, user UserID, mode RankMode) ([]*Dialog, error)
	ToggleFavorite(ctx context.Context, dialogID uint, user UserID) (*Dialog, bool, error)
	RemoveFavorite(ctx context.Context, dialogID uint, user UserID) (*Dialog, bool, error)
	IsFavorite(ctx context.Context, dialogID uint, user UserID) (bool, error)

	SendMessage(ctx context.Context, dialogID uint, sender UserID, text string) (*Message, error)
	ListMessages(ctx context.Context, dialogID uint, reader UserID) ([]Message, error)
	MarkReadUpTo(ctx context.Context, dialogID, messageID uint, reader UserID) (int64, error)
	ListUserMessages(ctx context.Context, user UserID, limit, offset int) ([]Message, int64, error)
	UnreadCount(ctx context.Context, dialogID uint, reader UserID) (int64, error)
	UnreadCounts(ctx context.Context, reader UserID, dialogs []*Dialog) (map[uint]int64, error)
}

type service struct {
	dialogs  DialogRepository
	messages MessageRepository
	policy   MessagePolicy
	log      zerolog.Logger
}

// NewService wires the dialog service with its stores.
func NewService(dialogs DialogRepository, messages MessageRepository, policy MessagePolicy, log zerolog.Logger) Service {
	return &service{
		dialogs:  dialogs,
		messages: messages,
		policy:   policy,
		log:      log.With().Str("component", "dialog-service").Logger(),
	}
}

// CreateDialog returns the dialog for the pair, creating it on first use.
// The bool result is true only for the call that created it.
func (s *service) CreateDialog(ctx context.Context, creator, other UserID) (*Dialog, bool, error) {
	a, b, err := NormalizePair(creator, other)
	if err != nil {
		return nil, false, validationError(ctx, err, "dialog-invalid-pair")
	}

	existing, err := s.dialogs.FindByPair(ctx, a, b)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrDialogNotFound) {
		return nil, false, err
	}

	created := &Dialog{ParticipantA: a, ParticipantB: b}
	if err := s.dialogs.Create(ctx, created); err != nil {
		if !errors.Is(err, ErrDialogConflict) {
			return nil, false, err
		}
		s.log.Debug().Str("user_a", string(a)).Str("user_b", string(b)).Msg("dialog created concurrently, loading winner")
		winner, findErr := s.dialogs.FindByPair(ctx, a, b)
		if findErr != nil {
			return nil, false, err
		}
		return winner, false, nil
	}
	return created, true, nil
}

func (s *service) GetDialog(ctx context.Context, dialogID uint, user UserID) (*Dialog, error) {
	return s.participantDialog(ctx, dialogID, user)
}

func (s *service) ListDialogs(ctx context.Context, user UserID, mode RankMode) ([]*Dialog, error) {
	if strings.TrimSpace(string(user)) == "" {
		return nil, validationError(ctx, ErrInvalidUser, "dialog-invalid-user")
	}
	dialogs, err := s.dialogs.ListForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return Rank(user, dialogs, mode), nil
}

// ToggleFavorite marks the dialog as a favorite of user. Repeating it is a no-op.
func (s *service) ToggleFavorite(ctx context.Context, dialogID uint, user UserID) (*Dialog, bool, error) {
	if _, err := s.participantDialog(ctx, dialogID, user); err != nil {
		return nil, false, err
	}
	changed, err := s.dialogs.AddFavorite(ctx, dialogID, user)
	if err != nil {
		return nil, false, err
	}
	refreshed, err := s.dialogs.FindByID(ctx, dialogID)
	if err != nil {
		return nil, false, err
	}
	return refreshed, changed, nil
}

func (s *service) RemoveFavorite(ctx context.Context, dialogID uint, user UserID) (*Dialog, bool, error) {
	if _, err := s.participantDialog(ctx, dialogID, user); err != nil {
		return nil, false, err
	}
	changed, err := s.dialogs.RemoveFavorite(ctx, dialogID, user)
	if err != nil {
		return nil, false, err
	}
	refreshed, err := s.dialogs.FindByID(ctx, dialogID)
	if err != nil {
		return nil, false, err
	}
	return refreshed, changed, nil
}

func (s *service) IsFavorite(ctx context.Context, dialogID uint, user UserID) (bool, error) {
	if _, err := s.participantDialog(ctx, dialogID, user); err != nil {
		return false, err
	}
	return s.dialogs.IsFavorite(ctx, dialogID, user)
}

func (s *service) SendMessage(ctx context.Context, dialogID uint, sender UserID, text string) (*Message, error) {
	if strings.TrimSpace(string(sender)) == "" {
		return nil, validationError(ctx, ErrInvalidUser, "dialog-invalid-user")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationError(ctx, ErrEmptyText, "message-empty-text")
	}
	if s.policy.MaxLength > 0 && utf8.RuneCountInString(text) > s.policy.MaxLength {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			ErrTextTooLong.Error(), ErrTextTooLong, "message-text-too-long",
			map[string]any{"max_length": s.policy.MaxLength})
	}

	msg, err := s.messages.Append(ctx, dialogID, sender, text)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns the dialog history in order. Fetching the history advances the
// read boundary to its newest message; the returned slice reflects the new state.
func (s *service) ListMessages(ctx context.Context, dialogID uint, reader UserID) ([]Message, error) {
	if _, err := s.participantDialog(ctx, dialogID, reader); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListOrdered(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return messages, nil
	}

	last := messages[len(messages)-1]
	updated, err := s.messages.MarkReadUpTo(ctx, dialogID, &last)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		messages[i].IsRead = true
	}
	if updated > 0 {
		s.log.Debug().Uint("dialog_id", dialogID).Int64("updated", updated).Msg("read boundary advanced")
	}
	return messages, nil
}

func (s *service) MarkReadUpTo(ctx context.Context, dialogID, messageID uint, reader UserID) (int64, error) {
	if _, err := s.participantDialog(ctx, dialogID, reader); err != nil {
		return 0, err
	}
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return 0, err
	}
	if msg.DialogID != dialogID {
		return 0, messageNotFoundError(ctx, dialogID, messageID)
	}
	return s.messages.MarkReadUpTo(ctx, dialogID, msg)
}

func (s *service) ListUserMessages(ctx context.Context, user UserID, limit, offset int) ([]Message, int64, error) {
	if strings.TrimSpace(string(user)) == "" {
		return nil, 0, validationError(ctx, ErrInvalidUser, "dialog-invalid-user")
	}
	if offset < 0 {
		offset = 0
	}
	return s.messages.ListForUser(ctx, user, limit, offset)
}

func (s *service) UnreadCount(ctx context.Context, dialogID uint, reader UserID) (int64, error) {
	d, err := s.participantDialog(ctx, dialogID, reader)
	if err != nil {
		return 0, err
	}
	counts, err := s.UnreadCounts(ctx, reader, []*Dialog{d})
	if err != nil {
		return 0, err
	}
	return counts[dialogID], nil
}

// UnreadCounts counts unread messages sent to reader in each of the given dialogs.
// Dialogs reader does not take part in are skipped.
func (s *service) UnreadCounts(ctx context.Context, reader UserID, dialogs []*Dialog) (map[uint]int64, error) {
	ids := make([]uint, 0, len(dialogs))
	for _, d := range dialogs {
		if d != nil && d.HasParticipant(reader) {
			ids = append(ids, d.ID)
		}
	}
	if len(ids) == 0 {
		return map[uint]int64{}, nil
	}
	return s.messages.UnreadCounts(ctx, reader, ids)
}

func (s *service) participantDialog(ctx context.Context, dialogID uint, user UserID) (*Dialog, error) {
	if strings.TrimSpace(string(user)) == "" {
		return nil, validationError(ctx, ErrInvalidUser, "dialog-invalid-user")
	}
	d, err := s.dialogs.FindByID(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	if !d.HasParticipant(user) {
		return nil, notParticipantError(ctx, dialogID, user)
	}
	return d, nil
}
