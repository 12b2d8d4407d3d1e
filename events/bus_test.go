package events_test

import (
	"context"
	"errors"
	"testing"

	"cafeteria-api/events"
	"cafeteria-api/logger"
	"cafeteria-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	a, cancelA := bus.Subscribe(4)
	b, cancelB := bus.Subscribe(4)
	defer cancelA()
	defer cancelB()

	ev := events.Event{Type: events.TypeOrderCreated, OrderID: 7, Status: models.StatusPending}
	require.NoError(t, bus.Publish(context.Background(), ev))

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	require.NoError(t, bus.Publish(context.Background(), events.Event{OrderID: 1}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{OrderID: 2}))

	assert.Equal(t, uint(1), (<-ch).OrderID)
	assert.Len(t, ch, 0)
}

func TestBusCancelAndClose(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	ch, cancel := bus.Subscribe(1)
	assert.Equal(t, 1, bus.Subscribers())

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())

	other, _ := bus.Subscribe(1)
	bus.Close()
	_, open = <-other
	assert.False(t, open)

	late, _ := bus.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
	assert.NoError(t, bus.Publish(context.Background(), events.Event{}))
}

type failing struct{ err error }

func (f failing) Publish(context.Context, events.Event) error { return f.err }

func TestFanoutJoinsErrors(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	boom := errors.New("boom")
	err := events.Fanout{failing{boom}, bus}.Publish(context.Background(), events.Event{OrderID: 3})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint(3), (<-ch).OrderID)
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "cafeteria.order.status.updated", events.Event{Type: events.TypeOrderStatusUpdated}.Subject())
}
