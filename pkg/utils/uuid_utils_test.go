package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDv7_SortsByCreation(t *testing.T) {
	prev := GenerateUUIDv7()
	assert.Equal(t, uuid.Version(7), prev.Version())

	for i := 0; i < 50; i++ {
		next := GenerateUUIDv7()
		assert.Negative(t, bytes.Compare(prev[:], next[:]), "ids must be monotonic")
		prev = next
	}
}

func TestGenerateUUIDv7_FallsBackToRandom(t *testing.T) {
	orig := newUUIDv7
	t.Cleanup(func() { newUUIDv7 = orig })
	newUUIDv7 = func() (uuid.UUID, error) { return uuid.Nil, errors.New("clock unavailable") }

	id := GenerateUUIDv7()
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, uuid.Version(4), id.Version())
}
