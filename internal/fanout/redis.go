package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRelay shares events between server instances over one pub/sub
// channel. Each instance tags what it sends and ignores its own echo.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	origin  string
	local   *Hub
	log     *logrus.Entry
}

type relayEnvelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func NewRedisRelay(rdb *redis.Client, channel string, local *Hub, log *logrus.Entry) *RedisRelay {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.New().String(),
		local:   local,
		log:     log.WithField("component", "redis-relay"),
	}
}

// Deliver forwards a locally published event to the other instances.
func (r *RedisRelay) Deliver(ctx context.Context, ev Event) error {
	b, err := json.Marshal(relayEnvelope{Origin: r.origin, Event: ev})
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run feeds events from other instances into the local hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.log.WithError(err).Warn("bad relay message")
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.local.deliver(env.Event)
}
