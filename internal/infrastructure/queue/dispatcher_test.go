package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketbase/identity-service/internal/core/domain"
)

type stubActivityRepo struct {
	inserted chan domain.ActivityEvent
}

func newStubActivityRepo() *stubActivityRepo {
	return &stubActivityRepo{inserted: make(chan domain.ActivityEvent, 1024)}
}

func (r *stubActivityRepo) Insert(_ context.Context, event *domain.ActivityEvent) error {
	r.inserted <- *event
	return nil
}

func (r *stubActivityRepo) receive(t *testing.T) domain.ActivityEvent {
	t.Helper()
	select {
	case event := <-r.inserted:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for activity write")
		return domain.ActivityEvent{}
	}
}

func TestDispatcher_WritesEventsThrough(t *testing.T) {
	repo := newStubActivityRepo()
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Record(domain.ActivityEvent{
			UserID:    "user-1",
			Action:    domain.ActivityLogin,
			Timestamp: time.Now().UTC(),
		})
	}

	for i := 0; i < 10; i++ {
		event := repo.receive(t)
		if event.UserID != "user-1" || event.Action != domain.ActivityLogin {
			t.Fatalf("unexpected event: %+v", event)
		}
	}
}

// Record must return immediately even when no worker is draining the queue;
// once the buffer is full, events are dropped rather than stalling the caller.
func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := newStubActivityRepo()
	d := NewDispatcher(1, repo, zerolog.Nop())
	// Workers intentionally not started.

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+50; i++ {
			d.Record(domain.ActivityEvent{UserID: "user-1", Action: domain.ActivityLogin})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a saturated queue")
	}
}

func TestDispatcher_StopsOnContextCancel(t *testing.T) {
	repo := newStubActivityRepo()
	d := NewDispatcher(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.ActivityEvent{UserID: "user-1", Action: domain.ActivityRegister})
	repo.receive(t)

	cancel()
	// Give the worker time to observe cancellation before enqueueing more.
	time.Sleep(50 * time.Millisecond)

	d.Record(domain.ActivityEvent{UserID: "user-1", Action: domain.ActivityLogin})
	select {
	case event := <-repo.inserted:
		t.Fatalf("worker still writing after cancel: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcher_ShardIsStablePerUser(t *testing.T) {
	d := NewDispatcher(4, newStubActivityRepo(), zerolog.Nop())

	first := d.shardIndex("user-42")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard index not stable: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= len(d.workers) {
		t.Fatalf("shard index out of range: %d", first)
	}
}
