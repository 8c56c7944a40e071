package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/audiosession/internal/engine"
)

func TestEventBusDeliversPerHash(t *testing.T) {
	t.Parallel()

	bus := newEventBus()
	chA, cancelA := bus.subscribe(Hash(1), 4)
	defer cancelA()
	chB, cancelB := bus.subscribe(Hash(2), 4)
	defer cancelB()

	bus.publish(Event{Kind: InstanceEnded, Hash: Hash(1), Handle: engine.Handle(7)})

	ev := <-chA
	assert.Equal(t, InstanceEnded, ev.Kind)
	assert.Equal(t, engine.Handle(7), ev.Handle)
	assert.Empty(t, chB, "subscribers only see their own hash")
}

func TestEventBusFanOut(t *testing.T) {
	t.Parallel()

	bus := newEventBus()
	ch1, cancel1 := bus.subscribe(Hash(5), 4)
	defer cancel1()
	ch2, cancel2 := bus.subscribe(Hash(5), 4)
	defer cancel2()

	bus.publish(Event{Kind: DefinitionDisposed, Hash: Hash(5)})

	assert.Equal(t, DefinitionDisposed, (<-ch1).Kind)
	assert.Equal(t, DefinitionDisposed, (<-ch2).Kind)
}

func TestEventBusDropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	bus := newEventBus()
	ch, cancel := bus.subscribe(Hash(1), 1)
	defer cancel()

	bus.publish(Event{Kind: InstanceEnded, Hash: Hash(1), Handle: engine.Handle(1)})
	bus.publish(Event{Kind: InstanceEnded, Hash: Hash(1), Handle: engine.Handle(2)})

	assert.Equal(t, uint64(1), bus.droppedCount())

	// the buffered event is still the first one, order is preserved
	ev := <-ch
	assert.Equal(t, engine.Handle(1), ev.Handle)
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	t.Parallel()

	bus := newEventBus()
	ch, cancel := bus.subscribe(Hash(1), 4)
	cancel()

	_, open := <-ch
	require.False(t, open)

	// publishing after cancel reaches nobody and drops nothing
	bus.publish(Event{Kind: InstanceEnded, Hash: Hash(1)})
	assert.Zero(t, bus.droppedCount())
}
