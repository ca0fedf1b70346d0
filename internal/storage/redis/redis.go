// Package redis implements storage.Storage on Redis.
//
// Layout:
//
//	<prefix>:subscriber:<email>  string, JSON-encoded types.Subscriber
//	<prefix>:subscribers         sorted set of emails scored by subscribe time (µs)
//
// SETNX on the per-email key is the uniqueness check.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

const defaultPrefix = "sixthrift"

// Redis is a storage.Storage backed by a go-redis client.
type Redis struct {
	client *redis.Client
	prefix string
}

// New wraps client. An empty prefix falls back to "sixthrift".
func New(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis.Dial: %w", err)
	}
	return New(client, ""), nil
}

func (r *Redis) subscriberKey(email string) string {
	return r.prefix + ":subscriber:" + email
}

func (r *Redis) indexKey() string {
	return r.prefix + ":subscribers"
}

func (r *Redis) CreateSubscriber(ctx context.Context, email string) (types.Subscriber, error) {
	sub := types.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: encode: %w", err)
	}

	// ZAddNX leaves an existing member's score alone, so a losing
	// duplicate cannot reorder the list.
	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, r.subscriberKey(email), payload, 0)
		pipe.ZAddNX(ctx, r.indexKey(), redis.Z{
			Score:  float64(sub.SubscribedAt.UnixMicro()),
			Member: email,
		})
		return nil
	})
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", err)
	}
	if !created.Val() {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", storage.ErrDuplicateEmail)
	}

	return sub, nil
}

func (r *Redis) GetSubscriberByEmail(ctx context.Context, email string) (types.Subscriber, error) {
	raw, err := r.client.Get(ctx, r.subscriberKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", storage.ErrNotFound)
	}
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", err)
	}

	var sub types.Subscriber
	if err := json.Unmarshal(raw, &sub); err != nil {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: decode: %w", err)
	}
	return sub, nil
}

// GetSubscribers walks the sorted set; Redis orders equal scores by member,
// which gives the email tie-break for free.
func (r *Redis) GetSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	emails, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("GetSubscribers: %w", err)
	}

	subs := make([]types.Subscriber, 0, len(emails))
	if len(emails) == 0 {
		return subs, nil
	}

	keys := make([]string, len(emails))
	for i, email := range emails {
		keys[i] = r.subscriberKey(email)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("GetSubscribers: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed but the record is gone; skip rather than fail the list.
			continue
		}
		var sub types.Subscriber
		if err := json.Unmarshal([]byte(s), &sub); err != nil {
			return nil, fmt.Errorf("GetSubscribers: decode %s: %w", emails[i], err)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.client.Close() }
