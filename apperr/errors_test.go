package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWith_MatchesSentinelByCode(t *testing.T) {
	err := With(ErrMenuItemUnavailable, "Pizza", "%s is currently unavailable", "Pizza")

	assert.True(t, errors.Is(err, ErrMenuItemUnavailable))
	assert.False(t, errors.Is(err, ErrMenuItemNotFound))
	assert.Equal(t, "Pizza", SubjectOf(err))
	assert.Equal(t, "Pizza is currently unavailable", err.Error())
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestWrappedErrorKeepsCode(t *testing.T) {
	err := fmt.Errorf("create order: %w", ErrUserNotFound)

	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, "USER_NOT_FOUND", CodeOf(err))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStorage(t *testing.T) {
	assert.Nil(t, Storage(nil))

	raw := errors.New("disk I/O error")
	err := Storage(raw)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(err, raw))

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.True(t, e.Retryable())

	timeout := Storage(context.DeadlineExceeded)
	assert.Contains(t, timeout.Error(), "timed out")

	// coded errors pass through untouched
	assert.Same(t, ErrOrderNotFound, Storage(ErrOrderNotFound))
}

func TestForeignErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL", CodeOf(err))
	assert.Equal(t, "internal", KindOf(err).String())
}
