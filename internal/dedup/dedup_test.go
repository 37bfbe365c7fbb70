package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewGuard(client, time.Minute), mr
}

func TestFirstDeliveryClaimsID(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	if !g.FirstDelivery(ctx, "wamid.ABC123") {
		t.Fatal("first delivery must pass")
	}
	if g.FirstDelivery(ctx, "wamid.ABC123") {
		t.Fatal("redelivery of the same id must be blocked")
	}
	if !g.FirstDelivery(ctx, "wamid.XYZ789") {
		t.Fatal("a different id must pass")
	}
}

func TestClaimExpires(t *testing.T) {
	g, mr := newTestGuard(t)
	ctx := context.Background()

	if !g.FirstDelivery(ctx, "wamid.TTL") {
		t.Fatal("first delivery must pass")
	}
	mr.FastForward(2 * time.Minute)
	if !g.FirstDelivery(ctx, "wamid.TTL") {
		t.Fatal("id must be claimable again after the TTL window")
	}
}

func TestNilGuardFailsOpen(t *testing.T) {
	var g *Guard
	if !g.FirstDelivery(context.Background(), "wamid.NIL") {
		t.Fatal("nil guard must treat every delivery as first")
	}
}

func TestEmptyIDPasses(t *testing.T) {
	g, _ := newTestGuard(t)
	if !g.FirstDelivery(context.Background(), "") {
		t.Fatal("messages without an id must not be dropped")
	}
}

func TestRedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	g := NewGuard(client, time.Minute)
	mr.Close()

	if !g.FirstDelivery(context.Background(), "wamid.DOWN") {
		t.Fatal("redis failure must fail open")
	}
}
