package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		name    string
		a, b    UserID
		wantA   UserID
		wantB   UserID
		wantErr error
	}{
		{name: "already ordered", a: "alice", b: "bob", wantA: "alice", wantB: "bob"},
		{name: "reversed", a: "bob", b: "alice", wantA: "alice", wantB: "bob"},
		{name: "numeric ids compare as strings", a: "10", b: "9", wantA: "10", wantB: "9"},
		{name: "trims whitespace", a: " bob ", b: "alice", wantA: "alice", wantB: "bob"},
		{name: "self dialog", a: "alice", b: "alice", wantErr: ErrInvalidPair},
		{name: "blank user", a: "  ", b: "alice", wantErr: ErrInvalidUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, err := NormalizePair(tt.a, tt.b)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestNormalizePairIsSymmetric(t *testing.T) {
	a1, b1, err := NormalizePair("u-42", "u-7")
	require.NoError(t, err)
	a2, b2, err := NormalizePair("u-7", "u-42")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestDialogParticipantHelpers(t *testing.T) {
	d := &Dialog{ID: 1, ParticipantA: "alice", ParticipantB: "bob"}

	assert.True(t, d.HasParticipant("alice"))
	assert.False(t, d.HasParticipant("carol"))
	assert.False(t, d.HasParticipant(""))

	other, ok := d.Other("bob")
	assert.True(t, ok)
	assert.Equal(t, UserID("alice"), other)

	_, ok = d.Other("carol")
	assert.False(t, ok)
	assert.Equal(t, [2]UserID{"alice", "bob"}, d.Participants())
}
