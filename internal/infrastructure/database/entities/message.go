package entities

import (
	"time"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

// Message represents the database schema for dialog messages.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	DialogID  uint      `gorm:"not null;index:idx_messages_dialog_order,priority:1;index:idx_messages_dialog_unread,priority:1"`
	Dialog    *Dialog   `gorm:"foreignKey:DialogID;constraint:OnDelete:CASCADE"`
	SenderID  string    `gorm:"type:varchar(64);not null;index:idx_messages_sender"`
	Text      string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_messages_dialog_unread,priority:2"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_dialog_order,priority:2"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model
func (m *Message) EtoD() *dialog.Message {
	return &dialog.Message{
		ID:        m.ID,
		DialogID:  m.DialogID,
		SenderID:  dialog.UserID(m.SenderID),
		Text:      m.Text,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// NewSchemaMessage creates a database entity from domain model
func NewSchemaMessage(m *dialog.Message) *Message {
	return &Message{
		ID:        m.ID,
		DialogID:  m.DialogID,
		SenderID:  string(m.SenderID),
		Text:      m.Text,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
