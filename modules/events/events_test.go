package events_test

import (
	"testing"
	"treasury-node/lib/test_utils"
	"treasury-node/modules/events"

	"github.com/stretchr/testify/assert"
)

func TestBusPluginLifecycle(t *testing.T) {
	test_utils.RunPlugin(t, events.New(), true)
}

func TestPublishFanout(t *testing.T) {
	bus := events.New()

	first, unsubFirst := bus.Subscribe(4)
	second, unsubSecond := bus.Subscribe(4)
	defer unsubFirst()
	defer unsubSecond()

	bus.Publish(events.Event{Kind: events.KindDeposit, Account: "a", Amount: 1})

	ev := <-first
	assert.Equal(t, events.KindDeposit, ev.Kind)
	ev = <-second
	assert.Equal(t, "a", ev.Account)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := events.New()

	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()
	// unsubscribing twice is fine
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := events.New()

	_, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	// a full subscriber drops events instead of stalling the engine
	for i := 0; i < 10; i++ {
		bus.Publish(events.Event{Kind: events.KindActionSubmitted, Index: uint64(i)})
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	bus := events.New()

	ch, _ := bus.Subscribe(1)
	assert.NoError(t, bus.Stop())

	_, open := <-ch
	assert.False(t, open)
}
