package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToAllSubscribersIncludingOriginator(t *testing.T) {
	bus := NewMemoryBus()

	var first, second [][]byte
	bus.Subscribe("greetings", func(topic string, payload []byte) {
		first = append(first, payload)
	})
	bus.Subscribe("greetings", func(topic string, payload []byte) {
		second = append(second, payload)
	})

	require.NoError(t, bus.Publish(context.Background(), "greetings", map[string]string{"msg": "hello"}))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.JSONEq(t, `{"msg":"hello"}`, string(first[0]))
}

func TestMemoryBusTopicIsolation(t *testing.T) {
	bus := NewMemoryBus()

	var got int
	bus.Subscribe("a", func(topic string, payload []byte) { got++ })

	require.NoError(t, bus.Publish(context.Background(), "b", "payload"))
	assert.Zero(t, got)
}

func TestMemoryBusPublishAfterClose(t *testing.T) {
	bus := NewMemoryBus()
	bus.Subscribe("a", func(topic string, payload []byte) {
		t.Fatal("handler must not run after close")
	})

	require.NoError(t, bus.Close())
	assert.Error(t, bus.Publish(context.Background(), "a", "payload"))
}

func TestMemoryBusRejectsUnmarshalablePayload(t *testing.T) {
	bus := NewMemoryBus()
	assert.Error(t, bus.Publish(context.Background(), "a", make(chan int)))
}
