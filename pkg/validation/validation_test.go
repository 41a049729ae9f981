package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"", false},
		{"alice", false},
		{"alice@localhost", false},
		{"Alice <alice@example.com>", false},
		{"alice @example.com", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.in))
		})
	}
}

func TestCollectorKeepsEveryViolation(t *testing.T) {
	var c Collector
	c.Check(true, "title", "never recorded")
	c.Add("title", "too short")
	c.Check(false, "amount", "must be positive")

	err := c.Err()
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.True(t, verr.Has("title"))
	assert.True(t, verr.Has("amount"))
	assert.False(t, verr.Has("currency"))
	assert.Equal(t, "validation failed: title: too short; amount: must be positive", verr.Error())
}

func TestCollectorEmpty(t *testing.T) {
	var c Collector
	assert.NoError(t, c.Err())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@example.com", NormalizeEmail("  Bob@Example.COM "))
}
