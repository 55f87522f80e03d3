package entities

import "time"

// DialogFavorite records that a participant starred a dialog.
type DialogFavorite struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	DialogID  uint      `gorm:"not null;uniqueIndex:idx_dialog_favorites_dialog_user,priority:1"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_dialog_favorites_dialog_user,priority:2;index:idx_dialog_favorites_user"`
}

// TableName specifies the table name for DialogFavorite.
func (DialogFavorite) TableName() string {
	return "dialog_favorites"
}
