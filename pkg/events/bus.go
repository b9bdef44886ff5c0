// Package events provides the broadcast channel used to propagate wallet
// mutations between service instances. Every publish is delivered to all
// subscribers on the topic, the publishing instance included, so consumers
// must treat delivery as at-least-once and deduplicate by record id.
package events

import "context"

// Handler receives the raw payload published on a topic. Handlers must not
// panic on malformed payloads; decode failures are logged and dropped.
type Handler func(topic string, payload []byte)

type Bus interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Subscribe(topic string, h Handler)
	Close() error
}
