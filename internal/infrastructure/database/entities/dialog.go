package entities

import (
	"time"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

// Dialog represents the database schema for dialogs.
// UserA is always the smaller id of the pair in byte order, so both columns use the "C" collation.
type Dialog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	UserA string `gorm:"column:user_a;type:varchar(64) COLLATE \"C\";not null;uniqueIndex:idx_dialogs_pair,priority:1;check:chk_dialogs_pair_order,user_a COLLATE \"C\" < user_b COLLATE \"C\""`
	UserB string `gorm:"column:user_b;type:varchar(64) COLLATE \"C\";not null;uniqueIndex:idx_dialogs_pair,priority:2;index:idx_dialogs_user_b"`

	UserALastSentAt *time.Time `gorm:"column:user_a_last_sent_at"`
	UserBLastSentAt *time.Time `gorm:"column:user_b_last_sent_at"`

	Favorites []DialogFavorite `gorm:"foreignKey:DialogID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Dialog.
func (Dialog) TableName() string {
	return "dialogs"
}

// EtoD converts database entity to domain model
func (d *Dialog) EtoD() *dialog.Dialog {
	favorites := make([]dialog.UserID, 0, len(d.Favorites))
	for _, f := range d.Favorites {
		favorites = append(favorites, dialog.UserID(f.UserID))
	}
	return &dialog.Dialog{
		ID:           d.ID,
		ParticipantA: dialog.UserID(d.UserA),
		ParticipantB: dialog.UserID(d.UserB),
		FavoritedBy:  favorites,
		LastSentAtA:  d.UserALastSentAt,
		LastSentAtB:  d.UserBLastSentAt,
		CreatedAt:    d.CreatedAt,
	}
}

// NewSchemaDialog creates a database entity from domain model
func NewSchemaDialog(d *dialog.Dialog) *Dialog {
	return &Dialog{
		ID:              d.ID,
		UserA:           string(d.ParticipantA),
		UserB:           string(d.ParticipantB),
		UserALastSentAt: d.LastSentAtA,
		UserBLastSentAt: d.LastSentAtB,
		CreatedAt:       d.CreatedAt,
	}
}
