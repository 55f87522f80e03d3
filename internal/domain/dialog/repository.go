package dialog

import "context"

// DialogRepository owns Dialog lifecycle and the favorite relation.
type DialogRepository interface {
	// Create inserts a dialog for an already normalized pair. A uniqueness violation
	// is reported as ErrDialogConflict.
	Create(ctx context.Context, dialog *Dialog) error
	FindByID(ctx context.Context, id uint) (*Dialog, error)
	FindByPair(ctx context.Context, a, b UserID) (*Dialog, error)
	ListForUser(ctx context.Context, user UserID) ([]*Dialog, error)
	AddFavorite(ctx context.Context, dialogID uint, user UserID) (bool, error)
	RemoveFavorite(ctx context.Context, dialogID uint, user UserID) (bool, error)
	IsFavorite(ctx context.Context, dialogID uint, user UserID) (bool, error)
}

// MessageRepository owns Message lifecycle and read state.
type MessageRepository interface {
	// Append stores a message, keeping per-dialog timestamps non-decreasing and
	// advancing the sender's last-activity index in the same write.
	Append(ctx context.Context, dialogID uint, sender UserID, text string) (*Message, error)
	FindByID(ctx context.Context, id uint) (*Message, error)
	ListOrdered(ctx context.Context, dialogID uint) ([]Message, error)
	// MarkReadUpTo flips every unread message with CreatedAt <= upTo.CreatedAt in one atomic update.
	MarkReadUpTo(ctx context.Context, dialogID uint, upTo *Message) (int64, error)
	ListForUser(ctx context.Context, user UserID, limit, offset int) ([]Message, int64, error)
	// UnreadCounts counts unread messages sent to reader, keyed by dialog id.
	UnreadCounts(ctx context.Context, reader UserID, dialogIDs []uint) (map[uint]int64, error)
}
