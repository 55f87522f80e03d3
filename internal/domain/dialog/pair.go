package dialog

import "strings"

// NormalizePair orders a participant pair so that (a, b) and (b, a) map to the same key.
// The order is byte-wise string comparison of the ids.
func NormalizePair(a, b UserID) (UserID, UserID, error) {
	a = UserID(strings.TrimSpace(string(a)))
	b = UserID(strings.TrimSpace(string(b)))
	if a == "" || b == "" {
		return "", "", ErrInvalidUser
	}
	if a == b {
		return "", "", ErrInvalidPair
	}
	if b < a {
		return b, a, nil
	}
	return a, b, nil
}
