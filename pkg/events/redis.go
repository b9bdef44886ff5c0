package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adeyemio/betwallet/pkg/logger"
)

// RedisBus is the cross-instance Bus implementation backed by Redis pub/sub.
// Channels are namespaced so several deployments can share one Redis.
type RedisBus struct {
	Client *redis.Client

	prefix string
	mu     sync.Mutex
	subs   []*redis.PubSub
}

func NewRedisBus(redisURL, password string) *RedisBus {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("Failed to parse Redis url", logger.Fields{"error": err.Error(), "url": redisURL})
		opt = &redis.Options{
			Addr:     redisURL,
			Password: password,
			DB:       0,
		}
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("Failed to connect to Redis", logger.Fields{"error": err.Error(), "url": redisURL})
	} else {
		logger.Info("Connected to Redis", logger.Fields{"url": redisURL})
	}

	return &RedisBus{Client: rdb, prefix: "betwallet:"}
}

func (r *RedisBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	if err := r.Client.Publish(ctx, r.prefix+topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %v", err)
	}

	return nil
}

func (r *RedisBus) Subscribe(topic string, h Handler) {
	sub := r.Client.Subscribe(context.Background(), r.prefix+topic)

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	go func() {
		for msg := range sub.Channel() {
			h(topic, []byte(msg.Payload))
		}
	}()
}

func (r *RedisBus) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs {
		sub.Close()
	}
	return r.Client.Close()
}
