package dialog

import (
	"slices"
	"strings"
	"time"
)

// RankMode selects how ListDialogs orders a user's dialogs.
type RankMode string

const (
	RankNone         RankMode = "none"
	RankLastSent     RankMode = "last_sent"
	RankLastReceived RankMode = "last_received"
)

// ParseRankMode accepts the filter values exposed over HTTP.
func ParseRankMode(raw string) (RankMode, error) {
	switch RankMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RankNone:
		return RankNone, nil
	case RankLastSent:
		return RankLastSent, nil
	case RankLastReceived:
		return RankLastReceived, nil
	default:
		return "", ErrInvalidRankMode
	}
}

// Rank orders dialogs for user according to mode. The input slice is not modified.
func Rank(user UserID, dialogs []*Dialog, mode RankMode) []*Dialog {
	switch mode {
	case RankLastSent:
		return RankByLastSent(user, dialogs)
	case RankLastReceived:
		return RankByLastReceived(user, dialogs)
	default:
		return rankBy(dialogs, func(*Dialog) *time.Time { return nil })
	}
}

// RankByLastSent puts the dialog where user most recently sent a message first.
// Dialogs without a message from user go last; ties fall back to ascending id.
func RankByLastSent(user UserID, dialogs []*Dialog) []*Dialog {
	return rankBy(dialogs, func(d *Dialog) *time.Time { return d.LastSentAt(user) })
}

// RankByLastReceived is RankByLastSent over messages sent by the other participant.
func RankByLastReceived(user UserID, dialogs []*Dialog) []*Dialog {
	return rankBy(dialogs, func(d *Dialog) *time.Time { return d.LastReceivedAt(user) })
}

func rankBy(dialogs []*Dialog, key func(*Dialog) *time.Time) []*Dialog {
	ranked := slices.Clone(dialogs)
	slices.SortStableFunc(ranked, func(x, y *Dialog) int {
		kx, ky := key(x), key(y)
		switch {
		case kx != nil && ky == nil:
			return -1
		case kx == nil && ky != nil:
			return 1
		case kx != nil && ky != nil && !kx.Equal(*ky):
			if kx.After(*ky) {
				return -1
			}
			return 1
		}
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// ComputeActivity recomputes the last-activity index of d from its messages:
// the newest CreatedAt per sender.
func ComputeActivity(d *Dialog, messages []Message) {
	d.LastSentAtA, d.LastSentAtB = nil, nil
	for i := range messages {
		m := messages[i]
		if m.DialogID != d.ID {
			continue
		}
		created := m.CreatedAt
		switch m.SenderID {
		case d.ParticipantA:
			if d.LastSentAtA == nil || created.After(*d.LastSentAtA) {
				d.LastSentAtA = &created
			}
		case d.ParticipantB:
			if d.LastSentAtB == nil || created.After(*d.LastSentAtB) {
				d.LastSentAtB = &created
			}
		}
	}
}
