package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookStatus_Valid(t *testing.T) {
	assert.True(t, StatusToRead.Valid())
	assert.True(t, StatusReading.Valid())
	assert.True(t, StatusFinished.Valid())
	assert.False(t, BookStatus("read").Valid())
	assert.False(t, BookStatus("").Valid())
	assert.False(t, BookStatus("abandoned").Valid())
}

func TestBookStatus_Priority(t *testing.T) {
	// reading shelves above to-read, to-read above finished
	assert.Less(t, StatusReading.Priority(), StatusToRead.Priority())
	assert.Less(t, StatusToRead.Priority(), StatusFinished.Priority())
	assert.Greater(t, BookStatus("bogus").Priority(), StatusFinished.Priority())
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected BookStatus
	}{
		{"canonical to-read", "to-read", StatusToRead},
		{"canonical reading", "reading", StatusReading},
		{"canonical finished", "finished", StatusFinished},
		{"legacy read maps to finished", "read", StatusFinished},
		{"empty falls back", "", StatusToRead},
		{"garbage falls back", "paused", StatusToRead},
		{"case sensitive", "Reading", StatusToRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.raw))
		})
	}
}
