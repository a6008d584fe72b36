package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/asyncflow/asyncflow/task"
)

func noop(ctx context.Context, inputs []interface{}) (interface{}, error) {
	return nil, nil
}

func TestFIFO(t *testing.T) {
	q := New()

	for _, id := range []string{"t-1", "t-2", "t-3"} {
		if err := q.Enqueue(task.New(id, noop, nil)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	for _, want := range []string{"t-1", "t-2", "t-3"} {
		tk, ok := q.Dequeue()
		if !ok {
			t.Fatal("Dequeue reported closed")
		}
		if tk.ID != want {
			t.Errorf("Dequeue() = %s, want %s", tk.ID, want)
		}
	}
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New()

	got := make(chan *task.Task, 1)
	go func() {
		tk, ok := q.Dequeue()
		if ok {
			got <- tk
		}
	}()

	// The consumer must be parked, not spinning on an empty queue.
	select {
	case <-got:
		t.Fatal("Dequeue returned before Enqueue")
	case <-time.After(20 * time.Millisecond):
	}

	q.Enqueue(task.New("t-late", noop, nil))

	select {
	case tk := <-got:
		if tk.ID != "t-late" {
			t.Errorf("Dequeue() = %s, want t-late", tk.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake after Enqueue")
	}
}

func TestCloseDrainsRemaining(t *testing.T) {
	q := New()
	q.Enqueue(task.New("t-a", noop, nil))
	q.Enqueue(task.New("t-b", noop, nil))
	q.Close()

	// Closed queue rejects new work but drains what it holds.
	if err := q.Enqueue(task.New("t-c", noop, nil)); err != ErrQueueClosed {
		t.Errorf("Enqueue after Close = %v, want ErrQueueClosed", err)
	}

	if tk, ok := q.Dequeue(); !ok || tk.ID != "t-a" {
		t.Fatalf("Dequeue() = (%v, %v), want t-a", tk, ok)
	}
	if tk, ok := q.Dequeue(); !ok || tk.ID != "t-b" {
		t.Fatalf("Dequeue() = (%v, %v), want t-b", tk, ok)
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on drained closed queue should report closed")
	}
}

func TestCloseWakesBlockedConsumers(t *testing.T) {
	q := New()

	done := make(chan bool, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, ok := q.Dequeue()
			done <- ok
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()

	for i := 0; i < 4; i++ {
		select {
		case ok := <-done:
			if ok {
				t.Error("blocked consumer should observe closed, not a task")
			}
		case <-time.After(time.Second):
			t.Fatal("consumer still blocked after Close")
		}
	}
}

func TestEnqueueNeverBlocks(t *testing.T) {
	q := New()

	// No consumer at all: a deep backlog must still accept pushes.
	start := time.Now()
	for i := 0; i < 100000; i++ {
		if err := q.Enqueue(task.New("t", noop, nil)); err != nil {
			t.Fatalf("Enqueue failed at %d: %v", i, err)
		}
	}
	if q.Len() != 100000 {
		t.Fatalf("Len() = %d, want 100000", q.Len())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("100k submissions took %v; enqueue should be cheap", elapsed)
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	q := New()

	const total = 1000
	var consumed sync.WaitGroup
	consumed.Add(total)

	for i := 0; i < 4; i++ {
		go func() {
			for {
				if _, ok := q.Dequeue(); !ok {
					return
				}
				consumed.Done()
			}
		}()
	}

	for i := 0; i < total; i++ {
		if err := q.Enqueue(task.New("t", noop, nil)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	consumed.Wait()
	q.Close()
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}
