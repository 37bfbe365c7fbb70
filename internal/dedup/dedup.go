// Package dedup guards against provider webhook redeliveries. Meta retries the
// webhook until it sees a 2xx, so the same message id (wamid) can arrive more
// than once; the guard makes sure only the first delivery drives the dialogue.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "wamid:"

// Guard records seen message ids in Redis with a TTL. A nil Guard is a no-op
// that treats every delivery as first, for deployments without Redis.
type Guard struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewGuard builds the guard. Returns nil when the client is nil.
func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Guard{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("conectifisio.internal.dedup"),
	}
}

// FirstDelivery reports whether this message id has not been seen within the
// TTL window, claiming it atomically. On Redis errors it fails open: a
// duplicate turn is a smaller problem than a dropped patient message.
func (g *Guard) FirstDelivery(ctx context.Context, messageID string) bool {
	if g == nil || messageID == "" {
		return true
	}
	ctx, span := g.tracer.Start(ctx, "dedup.first_delivery")
	defer span.End()

	ok, err := g.redis.SetNX(ctx, keyPrefix+messageID, 1, g.ttl).Result()
	if err != nil {
		span.RecordError(fmt.Errorf("dedup: claim %s: %w", messageID, err))
		return true
	}
	return ok
}
