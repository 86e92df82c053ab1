package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestQueue_EnqueueDequeue(t *testing.T) {
	mr := miniredis.RunT(t)

	q, err := New(Config{URL: "redis://" + mr.Addr(), Retries: 0})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = q.Close() }()

	ctx := context.Background()
	if err := q.Enqueue(ctx, 123); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	runID, ok, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if !ok {
		t.Fatal("dequeue returned ok=false for a populated queue")
	}
	if runID != 123 {
		t.Errorf("runID = %d, want 123", runID)
	}
}

func TestQueue_DequeueTimeout(t *testing.T) {
	mr := miniredis.RunT(t)

	q, err := New(Config{URL: "redis://" + mr.Addr(), Retries: 0})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = q.Close() }()

	_, ok, err := q.Dequeue(context.Background(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if ok {
		t.Error("dequeue on an empty queue returned ok=true")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New with empty URL should error")
	}
}
