package eventbus

import (
	"testing"
	"time"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	sink := make(Sink, 1)
	bus.Subscribe(42, sink)

	bus.Publish(42, []byte(`{"event":"run.status"}`))

	select {
	case got := <-sink:
		if string(got) != `{"event":"run.status"}` {
			t.Errorf("got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestBus_PublishDoesNotCrossRuns(t *testing.T) {
	bus := NewBus()
	sinkA := make(Sink, 1)
	sinkB := make(Sink, 1)
	bus.Subscribe(1, sinkA)
	bus.Subscribe(2, sinkB)

	bus.Publish(1, []byte("for-a"))

	select {
	case got := <-sinkA:
		if string(got) != "for-a" {
			t.Errorf("sinkA got %s", got)
		}
	default:
		t.Fatal("sinkA received nothing")
	}

	select {
	case got := <-sinkB:
		t.Fatalf("sinkB unexpectedly received %s", got)
	default:
	}
}

func TestBus_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()
	full := make(Sink) // unbuffered, never read from
	ready := make(Sink, 1)
	bus.Subscribe(9, full)
	bus.Subscribe(9, ready)

	done := make(chan struct{})
	go func() {
		bus.Publish(9, []byte("x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full sink")
	}

	select {
	case <-ready:
	default:
		t.Error("ready sink did not receive the event")
	}
}

func TestBus_UnsubscribeRemovesSink(t *testing.T) {
	bus := NewBus()
	sink := make(Sink, 1)
	bus.Subscribe(3, sink)
	bus.Unsubscribe(3, sink)

	if n := bus.SubscriberCount(3); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}
