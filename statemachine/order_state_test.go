package statemachine

import (
	"errors"
	"testing"

	"cafeteria-api/apperr"
	"cafeteria-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	cases := map[models.OrderStatus]models.OrderStatus{
		models.StatusPending:   models.StatusConfirmed,
		models.StatusConfirmed: models.StatusPreparing,
		models.StatusPreparing: models.StatusReady,
		models.StatusReady:     models.StatusDelivered,
	}
	for from, want := range cases {
		next := NextStatus(from)
		require.NotNil(t, next, from)
		assert.Equal(t, want, *next)
	}

	assert.Nil(t, NextStatus(models.StatusDelivered))
	assert.Nil(t, NextStatus(models.StatusCancelled))
}

func TestCanTransition_NeverSkipsForward(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusPending, models.StatusConfirmed))

	err := CanTransition(models.StatusPending, models.StatusPreparing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	assert.Error(t, CanTransition(models.StatusConfirmed, models.StatusDelivered))
	assert.Error(t, CanTransition(models.StatusReady, models.StatusPending))
	assert.Error(t, CanTransition(models.StatusPending, models.StatusPending))
}

func TestTerminalStates(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		assert.True(t, IsTerminal(terminal))
		for _, to := range models.AllStatuses {
			err := CanTransition(terminal, to)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "terminal state")
		}
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(models.StatusPending))
	assert.True(t, CanCancel(models.StatusConfirmed))
	assert.False(t, CanCancel(models.StatusPreparing))
	assert.False(t, CanCancel(models.StatusReady))
	assert.False(t, CanCancel(models.StatusDelivered))
	assert.False(t, CanCancel(models.StatusCancelled))
}

func TestGetAllTransitionsIsACopy(t *testing.T) {
	all := GetAllTransitions()
	require.NotEmpty(t, all)
	all[0].To = models.StatusDelivered

	assert.Equal(t, models.StatusConfirmed, GetAllTransitions()[0].To)
}
