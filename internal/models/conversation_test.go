package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}

func TestCanonicalPairIsDeterministic(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	lo1, hi1 := CanonicalPair(a, b)
	lo2, hi2 := CanonicalPair(b, a)

	assert.Equal(t, lo1, lo2)
	assert.Equal(t, hi1, hi2)
	assert.True(t, lo1.String() < hi1.String())
}

func TestCounterpart(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	lo, hi := CanonicalPair(a, b)

	conv := &Conversation{Participants: [2]uuid.UUID{lo, hi}}

	other, ok := conv.Counterpart(a)
	assert.True(t, ok)
	assert.Equal(t, b, other)

	other, ok = conv.Counterpart(b)
	assert.True(t, ok)
	assert.Equal(t, a, other)

	_, ok = conv.Counterpart(uuid.New())
	assert.False(t, ok)

	assert.True(t, conv.HasParticipant(a))
	assert.False(t, conv.HasParticipant(uuid.New()))
}
