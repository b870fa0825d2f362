package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSameIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	existing := []uuid.UUID{a, b, c}

	assert.NoError(t, sameIDs(existing, []uuid.UUID{c, a, b}))
	assert.NoError(t, sameIDs(nil, nil))
	assert.ErrorIs(t, sameIDs(existing, []uuid.UUID{a, b}), ErrOrderMismatch)
	assert.ErrorIs(t, sameIDs(existing, []uuid.UUID{a, a, b}), ErrOrderMismatch)
	assert.ErrorIs(t, sameIDs(existing, []uuid.UUID{a, b, uuid.New()}), ErrOrderMismatch)
}
