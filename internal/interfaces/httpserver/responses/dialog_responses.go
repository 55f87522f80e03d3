package responses

import (
	"time"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

// DialogView is a dialog as seen by one of its participants.
type DialogView struct {
	ID             uint       `json:"id"`
	Participants   [2]string  `json:"participants"`
	IsFavorite     bool       `json:"is_favorite"`
	UnreadCount    int64      `json:"unread_count"`
	LastSentAt     *time.Time `json:"last_sent_at"`
	LastReceivedAt *time.Time `json:"last_received_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FavoriteResponse is returned by favorite toggles.
type FavoriteResponse struct {
	DialogView
	Changed bool `json:"changed"`
}

// DialogListResponse is a page of dialogs.
type DialogListResponse struct {
	Data     []DialogView `json:"data"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int64        `json:"total"`
}

// MessageView is the wire form of a message.
type MessageView struct {
	ID        uint      `json:"id"`
	DialogID  uint      `json:"dialog_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageListResponse is a list or page of messages.
type MessageListResponse struct {
	Data     []MessageView `json:"data"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
	Total    int64         `json:"total"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// NewDialogView maps a dialog for viewer.
func NewDialogView(d *dialog.Dialog, viewer dialog.UserID, unread int64) DialogView {
	return DialogView{
		ID:             d.ID,
		Participants:   [2]string{string(d.ParticipantA), string(d.ParticipantB)},
		IsFavorite:     d.IsFavoritedBy(viewer),
		UnreadCount:    unread,
		LastSentAt:     d.LastSentAt(viewer),
		LastReceivedAt: d.LastReceivedAt(viewer),
		CreatedAt:      d.CreatedAt,
	}
}

func NewDialogViews(dialogs []*dialog.Dialog, viewer dialog.UserID, unread map[uint]int64) []DialogView {
	views := make([]DialogView, len(dialogs))
	for i, d := range dialogs {
		views[i] = NewDialogView(d, viewer, unread[d.ID])
	}
	return views
}

func NewMessageView(m dialog.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		DialogID:  m.DialogID,
		SenderID:  string(m.SenderID),
		Text:      m.Text,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func NewMessageViews(messages []dialog.Message) []MessageView {
	views := make([]MessageView, len(messages))
	for i := range messages {
		views[i] = NewMessageView(messages[i])
	}
	return views
}
