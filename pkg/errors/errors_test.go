package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrRepo, "fetch rejected")
	assert.Equal(t, ErrRepo, err.Code)
	assert.Equal(t, "[REPO] fetch rejected", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("exit status 128")
	err := Wrapf(cause, ErrRepo, "git fetch %s", "https://example/repo")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "exit status 128")
	assert.Contains(t, err.Error(), "https://example/repo")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrRepo, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrRepo, "nothing %d", 1))
}

func TestIsMatchesOnCode(t *testing.T) {
	err := Newf(ErrCannotProvide, "input %q has no provider", "origin url")
	assert.True(t, errors.Is(err, New(ErrCannotProvide, "")))
	assert.False(t, errors.Is(err, New(ErrRepo, "")))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct match", New(ErrValidation, "bad ref"), ErrValidation, true},
		{"wrapped match", fmt.Errorf("outer: %w", New(ErrRepo, "inner")), ErrRepo, true},
		{"mismatch", New(ErrRepo, "x"), ErrValidation, false},
		{"plain error", errors.New("plain"), ErrRepo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrGitBinary, GetErrorCode(New(ErrGitBinary, "git not found")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrRepo, "fetch failed").WithDetail("url", "https://example/repo")
	assert.Equal(t, "https://example/repo", err.Details["url"])
}
