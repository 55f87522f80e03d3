package dialog

import "time"

// UserID is the opaque identity of a participant. The user directory lives outside this service.
type UserID string

// Dialog is a two-party conversation keyed by its normalized participant pair.
type Dialog struct {
	ID           uint
	ParticipantA UserID
	ParticipantB UserID
	FavoritedBy  []UserID
	// LastSentAtA and LastSentAtB hold the newest message timestamp sent by each participant.
	LastSentAtA *time.Time
	LastSentAtB *time.Time
	CreatedAt   time.Time
}

// Participants returns the normalized pair.
func (d *Dialog) Participants() [2]UserID {
	return [2]UserID{d.ParticipantA, d.ParticipantB}
}

// HasParticipant reports whether user is one of the two participants.
func (d *Dialog) HasParticipant(user UserID) bool {
	return user != "" && (d.ParticipantA == user || d.ParticipantB == user)
}

// Other returns the counterpart of user.
func (d *Dialog) Other(user UserID) (UserID, bool) {
	switch user {
	case d.ParticipantA:
		return d.ParticipantB, true
	case d.ParticipantB:
		return d.ParticipantA, true
	default:
		return "", false
	}
}

// IsFavoritedBy reports whether user marked this dialog as a favorite.
func (d *Dialog) IsFavoritedBy(user UserID) bool {
	for _, u := range d.FavoritedBy {
		if u == user {
			return true
		}
	}
	return false
}

// LastSentAt is the time of the newest message user sent in this dialog.
func (d *Dialog) LastSentAt(user UserID) *time.Time {
	switch user {
	case d.ParticipantA:
		return d.LastSentAtA
	case d.ParticipantB:
		return d.LastSentAtB
	default:
		return nil
	}
}

// LastReceivedAt is the time of the newest message user received in this dialog.
func (d *Dialog) LastReceivedAt(user UserID) *time.Time {
	switch user {
	case d.ParticipantA:
		return d.LastSentAtB
	case d.ParticipantB:
		return d.LastSentAtA
	default:
		return nil
	}
}

// Message is a single entry of a dialog. Canonical order is (CreatedAt, ID) ascending.
type Message struct {
	ID        uint
	DialogID  uint
	SenderID  UserID
	Text      string
	IsRead    bool
	CreatedAt time.Time
}

// Before reports whether m precedes other in canonical order.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}

// MessagePolicy bounds what SendMessage accepts.
type MessagePolicy struct {
	MaxLength int
}
