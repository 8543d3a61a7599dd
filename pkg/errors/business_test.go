package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorSentinelIdentity(t *testing.T) {
	sentinel := NewBusinessError("SESSION_ENDED", "session has already ended")

	assert.EqualError(t, sentinel, "session has already ended")
	assert.ErrorIs(t, fmt.Errorf("join: %w", sentinel), sentinel)
	assert.NotErrorIs(t, NewBusinessError("SESSION_ENDED", "session has already ended"), sentinel)
}

func TestCodeOf(t *testing.T) {
	sentinel := NewBusinessError("CHANNEL_UNAVAILABLE", "realtime channel unavailable")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "bare business error", err: sentinel, want: "CHANNEL_UNAVAILABLE"},
		{name: "wrapped business error", err: fmt.Errorf("%w: dial tcp", sentinel), want: "CHANNEL_UNAVAILABLE"},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
