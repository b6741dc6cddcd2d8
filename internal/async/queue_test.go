package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingRunner struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingRunner) Run(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func TestQueueProcessesAndDrains(t *testing.T) {
	r := &recordingRunner{}
	q := NewQueue(r, nil, WithWorkers(2), WithQueueSize(8))

	want := 5
	for i := 0; i < want; i++ {
		if !q.Enqueue(uuid.New()) {
			t.Fatal("enqueue refused while open")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if got := r.count(); got != want {
		t.Fatalf("processed %d; want %d", got, want)
	}
}

func TestQueueRefusesAfterShutdown(t *testing.T) {
	q := NewQueue(&recordingRunner{}, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx) // second call is a no-op

	if q.Enqueue(uuid.New()) {
		t.Fatal("enqueue accepted after shutdown")
	}
}
