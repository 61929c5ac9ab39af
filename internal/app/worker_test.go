package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

type scriptedQueue struct {
	mu      sync.Mutex
	jobs    []domain.VideoID
	acked   []domain.VideoID
	cleared []domain.VideoID
	stale   int
}

func (q *scriptedQueue) Enqueue(ctx context.Context, id domain.VideoID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, id)
	return nil
}

func (q *scriptedQueue) Dequeue(ctx context.Context, timeout time.Duration) (domain.VideoID, error) {
	q.mu.Lock()
	if len(q.jobs) > 0 {
		id := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()
		return id, nil
	}
	q.mu.Unlock()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return "", ports.ErrQueueEmpty
	}
}

func (q *scriptedQueue) Ack(ctx context.Context, id domain.VideoID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, id)
	return nil
}

func (q *scriptedQueue) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stale++
	return 0, nil
}

func (q *scriptedQueue) MarkPending(ctx context.Context, id domain.VideoID, ttl time.Duration) (bool, error) {
	return true, nil
}

func (q *scriptedQueue) ClearPending(ctx context.Context, id domain.VideoID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cleared = append(q.cleared, id)
	return nil
}

func (q *scriptedQueue) Depth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

func (q *scriptedQueue) ackedIDs() []domain.VideoID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.VideoID(nil), q.acked...)
}

type scriptedProcess struct {
	mu   sync.Mutex
	seen []domain.VideoID
	err  error
	done chan struct{}
}

func (p *scriptedProcess) Execute(ctx context.Context, id domain.VideoID) error {
	p.mu.Lock()
	p.seen = append(p.seen, id)
	p.mu.Unlock()
	select {
	case p.done <- struct{}{}:
	default:
	}
	return p.err
}

func TestWorkerProcessesAndAcks(t *testing.T) {
	queue := &scriptedQueue{jobs: []domain.VideoID{"v1", "v2"}}
	process := &scriptedProcess{done: make(chan struct{}, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Worker{
			Queue:          queue,
			Process:        process,
			Concurrency:    1,
			DequeueTimeout: 10 * time.Millisecond,
		}.Run(ctx)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-process.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	acked := queue.ackedIDs()
	if len(acked) != 2 {
		t.Fatalf("acked = %v, want both jobs", acked)
	}
	if len(queue.cleared) != 2 {
		t.Fatalf("cleared = %v, want both markers dropped", queue.cleared)
	}
}

func TestWorkerAcksFailedJobs(t *testing.T) {
	queue := &scriptedQueue{jobs: []domain.VideoID{"v1"}}
	process := &scriptedProcess{done: make(chan struct{}, 2), err: errors.New("encode blew up")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Worker{
			Queue:          queue,
			Process:        process,
			Concurrency:    1,
			DequeueTimeout: 10 * time.Millisecond,
		}.Run(ctx)
	}()

	select {
	case <-process.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if acked := queue.ackedIDs(); len(acked) != 1 || acked[0] != "v1" {
		t.Fatalf("acked = %v, failed job must still be acked", acked)
	}
}
