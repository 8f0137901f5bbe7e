package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/observability"
)

// FetchFunc loads the value for a cache key on a miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// InvalidationHandler is notified when a key prefix is invalidated, locally or
// by another node.
type InvalidationHandler func(prefix string)

// QueryCache is an explicit read-through cache keyed by entity-prefixed filter
// tuples. Mutations invalidate whole prefixes; precision is traded for the
// guarantee that no list stays stale after a write.
type QueryCache interface {
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, bool, error)
	Invalidate(ctx context.Context, prefix string) error
	OnInvalidate(prefix string, handler InvalidationHandler)
	Start(ctx context.Context)
}

type invalidationEvent struct {
	Source string    `json:"source"`
	Prefix string    `json:"prefix"`
	SentAt time.Time `json:"sent_at"`
}

type queryCache struct {
	redis       *redis.Client
	nats        *nats.Conn
	channel     string
	natsSubject string
	logger      zerolog.Logger
	nodeID      string

	mu       sync.Mutex
	inFlight map[string]*inFlightCall

	handlerMu sync.RWMutex
	handlers  map[string][]InvalidationHandler
}

type inFlightCall struct {
	done  chan struct{}
	value []byte
	err   error
}

// New constructs a query cache. A nil Redis client yields a pass-through cache
// that always fetches; callers do not need to special-case it.
func New(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) QueryCache {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":invalidations"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".invalidations"
	}

	return &queryCache{
		redis:       redisClient,
		nats:        natsConn,
		channel:     channel,
		natsSubject: subject,
		logger:      logger.With().Str("component", "query_cache").Logger(),
		nodeID:      uuid.NewString(),
		inFlight:    make(map[string]*inFlightCall),
		handlers:    make(map[string][]InvalidationHandler),
	}
}

func (c *queryCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, bool, error) {
	if c.redis == nil {
		value, err := fetch(ctx)
		return value, false, err
	}

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		observability.CacheLookups().WithLabelValues(keyPrefix(key), "hit").Inc()
		return []byte(cached), true, nil
	}
	observability.CacheLookups().WithLabelValues(keyPrefix(key), "miss").Inc()
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through to fetch")
	}

	c.mu.Lock()
	if call, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.value, false, call.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	call := &inFlightCall{done: make(chan struct{})}
	c.inFlight[key] = call
	c.mu.Unlock()

	call.value, call.err = fetch(ctx)
	if call.err == nil && ttl > 0 {
		if err := c.redis.Set(ctx, key, call.value, ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
		}
	}

	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
	close(call.done)

	return call.value, false, call.err
}

func (c *queryCache) Invalidate(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("invalidation prefix must not be empty")
	}

	if err := c.deleteLocal(ctx, prefix); err != nil {
		return err
	}

	c.notify(prefix)
	c.publish(ctx, prefix)

	return nil
}

func (c *queryCache) OnInvalidate(prefix string, handler InvalidationHandler) {
	if handler == nil {
		return
	}
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[prefix] = append(c.handlers[prefix], handler)
}

// Start runs the remote invalidation consumers until ctx is cancelled.
func (c *queryCache) Start(ctx context.Context) {
	if c.redis != nil && c.channel != "" {
		go c.consumeRedis(ctx)
	}
	if c.nats != nil && c.natsSubject != "" {
		go c.consumeNATS(ctx)
	}
}

func keyPrefix(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return key
}

func (c *queryCache) deleteLocal(ctx context.Context, prefix string) error {
	if c.redis == nil {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, prefix+"*", 0).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return c.redis.Del(ctx, keys...).Err()
}

func (c *queryCache) notify(prefix string) {
	c.handlerMu.RLock()
	defer c.handlerMu.RUnlock()

	for registered, handlers := range c.handlers {
		if !strings.HasPrefix(prefix, registered) {
			continue
		}
		for _, handler := range handlers {
			handler(prefix)
		}
	}
}

func (c *queryCache) publish(ctx context.Context, prefix string) {
	event := invalidationEvent{Source: c.nodeID, Prefix: prefix, SentAt: time.Now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if c.redis != nil && c.channel != "" {
		if err := c.redis.Publish(ctx, c.channel, payload).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to publish invalidation to redis")
		}
	}

	if c.nats != nil && c.natsSubject != "" {
		if err := c.nats.Publish(c.natsSubject, payload); err != nil {
			c.logger.Warn().Err(err).Msg("failed to publish invalidation to nats")
		}
	}
}

func (c *queryCache) consumeRedis(ctx context.Context) {
	pubsub := c.redis.Subscribe(ctx, c.channel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error().Err(err).Msg("invalidation redis subscription closed")
			return
		}
		c.handleEvent(ctx, []byte(msg.Payload))
	}
}

func (c *queryCache) consumeNATS(ctx context.Context) {
	sub, err := c.nats.QueueSubscribe(c.natsSubject, "institute-cache", func(msg *nats.Msg) {
		c.handleEvent(ctx, msg.Data)
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to subscribe to nats invalidation subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to drain invalidation nats subscription")
		}
	}()
}

func (c *queryCache) handleEvent(ctx context.Context, payload []byte) {
	var event invalidationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Warn().Err(err).Msg("invalid invalidation event payload")
		return
	}

	if event.Source == c.nodeID || event.Prefix == "" {
		return
	}

	if err := c.deleteLocal(ctx, event.Prefix); err != nil {
		c.logger.Warn().Err(err).Str("prefix", event.Prefix).Msg("failed to apply remote invalidation")
	}
	c.notify(event.Prefix)
}
