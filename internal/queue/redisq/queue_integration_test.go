package redisq

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"vodstream/internal/domain"
)

// testRedisAddr returns the Redis address for integration tests. Defaults to
// localhost:6379. Set REDIS_TEST_ADDR to override.
func testRedisAddr() string {
	if addr := os.Getenv("REDIS_TEST_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// setupTestQueue connects to Redis and returns a Queue on a dedicated
// database. Calls t.Skip if Redis is unreachable.
func setupTestQueue(t *testing.T) (*Queue, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Connect(ctx, testRedisAddr(), "", 15)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr(), err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("FlushDB: %v", err)
	}
	cleanup := func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel2()
		_ = client.FlushDB(ctx2).Err()
		_ = client.Close()
	}
	return New(client), cleanup
}

func TestEnqueueDequeueAck(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	if err := q.Enqueue(ctx, "v1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	depth, err := q.Depth(ctx)
	if err != nil || depth != 1 {
		t.Fatalf("Depth = %d, %v, want 1", depth, err)
	}

	id, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if id != "v1" {
		t.Fatalf("Dequeue = %s, want v1", id)
	}

	depth, err = q.Depth(ctx)
	if err != nil || depth != 0 {
		t.Fatalf("Depth after dequeue = %d, %v, want 0", depth, err)
	}

	if err := q.Ack(ctx, id); err != nil {
		t.Fatalf("Ack: %v", err)
	}
}

func TestDequeueEmpty(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	if _, err := q.Dequeue(context.Background(), 100*time.Millisecond); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Dequeue error = %v, want ErrEmpty", err)
	}
}

func TestFIFOOrder(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, domainID(i)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		id, err := q.Dequeue(ctx, time.Second)
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if id != domainID(i) {
			t.Fatalf("Dequeue #%d = %s, want %s", i, id, domainID(i))
		}
	}
}

func TestRequeueStale(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	if err := q.Enqueue(ctx, "stale"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Dequeue(ctx, time.Second); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	// Fresh claim stays put.
	moved, err := q.RequeueStale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("RequeueStale: %v", err)
	}
	if moved != 0 {
		t.Fatalf("RequeueStale moved %d fresh jobs", moved)
	}

	// Everything is stale at a zero threshold.
	moved, err = q.RequeueStale(ctx, 0)
	if err != nil {
		t.Fatalf("RequeueStale: %v", err)
	}
	if moved != 1 {
		t.Fatalf("RequeueStale moved %d, want 1", moved)
	}

	id, err := q.Dequeue(ctx, time.Second)
	if err != nil || id != "stale" {
		t.Fatalf("Dequeue after requeue = %s, %v, want stale", id, err)
	}
}

func TestMarkPendingGuard(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := q.MarkPending(ctx, "g1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("MarkPending first = %v, %v, want true", ok, err)
	}
	ok, err = q.MarkPending(ctx, "g1", time.Minute)
	if err != nil || ok {
		t.Fatalf("MarkPending second = %v, %v, want false", ok, err)
	}

	if err := q.ClearPending(ctx, "g1"); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}
	ok, err = q.MarkPending(ctx, "g1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("MarkPending after clear = %v, %v, want true", ok, err)
	}
}

func TestVideoEventsRoundtrip(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events := NewVideoEvents(q.client, nil)
	got := make(chan domain.VideoRecord, 1)
	go events.Listen(ctx, func(record domain.VideoRecord) {
		select {
		case got <- record:
		default:
		}
	})

	// Wait for the subscription before publishing, or the event is dropped.
	deadline := time.Now().Add(2 * time.Second)
	for {
		subs, err := q.client.PubSubNumSub(ctx, eventsChannel).Result()
		if err == nil && subs[eventsChannel] > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscription never established")
		}
		time.Sleep(10 * time.Millisecond)
	}

	events.NotifyVideo(domain.VideoRecord{ID: "v1", Status: domain.VideoProcessing})

	select {
	case record := <-got:
		if record.ID != "v1" || record.Status != domain.VideoProcessing {
			t.Fatalf("received %+v", record)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func domainID(i int) domain.VideoID {
	return domain.VideoID(fmt.Sprintf("v%d", i))
}
