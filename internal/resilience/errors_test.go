package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid input: missing column"), false},
		{"explicit", NewTransientError("save", errors.New("busy")), true},
		{"wrapped explicit", fmt.Errorf("sheet: %w", NewTransientError("save", errors.New("busy"))), true},
		{"conn reset", fmt.Errorf("write tcp: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"eagain", fmt.Errorf("flock: %w", syscall.EAGAIN), true},
		{"ebusy", fmt.Errorf("rename: %w", syscall.EBUSY), true},
		{"net timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"pg starting", errors.New("FATAL: the database system is starting up (SQLSTATE 57P03)"), true},
		{"unique violation", errors.New("UNIQUE constraint failed: dedupe_keys.key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransientError(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError("store.save_run", inner)

	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "store.save_run: root cause", te.Error())
	assert.Equal(t, "root cause", NewTransientError("", inner).Error())
}
