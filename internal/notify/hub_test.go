package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type countingLogger struct {
	mu    sync.Mutex
	calls int
}

func (l *countingLogger) Debug(string, ...any) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
}

func (l *countingLogger) Info(string, ...any) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := NewHub(8)
	a := h.Subscribe()
	b := h.Subscribe()

	event := DeviceUpdate("living_room_light", map[string]any{"power": "on"}, time.Now())
	h.Broadcast(event)

	for _, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.Events():
			if got.Type != EventDeviceUpdate || got.DeviceID != "living_room_light" {
				t.Errorf("event = %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBroadcastFIFOPerSubscriber(t *testing.T) {
	h := NewHub(16)
	sub := h.Subscribe()

	for i := 0; i < 10; i++ {
		h.Broadcast(DeviceUpdate(fmt.Sprintf("device_%d", i), nil, time.Now()))
	}

	for i := 0; i < 10; i++ {
		got := <-sub.Events()
		want := fmt.Sprintf("device_%d", i)
		if got.DeviceID != want {
			t.Fatalf("event %d: got %s, want %s", i, got.DeviceID, want)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe()

	h.Unsubscribe(sub)

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after Unsubscribe")
	}
	if h.Count() != 0 {
		t.Errorf("Count = %d, want 0", h.Count())
	}

	// Idempotent.
	h.Unsubscribe(sub)
}

func TestUnsubscribedReceivesNoFurtherEvents(t *testing.T) {
	h := NewHub(8)
	gone := h.Subscribe()
	stays := h.Subscribe()

	h.Unsubscribe(gone)
	h.Broadcast(SecurityAlert("hallway_motion", "Motion detected", time.Now()))

	select {
	case got := <-stays.Events():
		if got.Type != EventSecurityAlert {
			t.Errorf("event = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive event")
	}
}

func TestSetLoggerConcurrentWithBroadcasts(t *testing.T) {
	h := NewHub(64)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	go func() {
		for range sub.Events() {
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.SetLogger(&countingLogger{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.Broadcast(DeviceUpdate("living_room_light", nil, time.Now()))
			other := h.Subscribe()
			h.Unsubscribe(other)
		}
	}()
	wg.Wait()
}

func TestSlowSubscriberIsDroppedNotBlockedOn(t *testing.T) {
	h := NewHub(2)
	slow := h.Subscribe()

	// Fill the buffer and go one past: the overflow drops the
	// subscriber instead of blocking the broadcaster.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			h.Broadcast(DeviceUpdate(fmt.Sprintf("device_%d", i), nil, time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}

	if h.Count() != 0 {
		t.Errorf("Count = %d, want 0 (slow subscriber dropped)", h.Count())
	}

	// The buffered events are still readable; the channel ends closed.
	drained := 0
	for range slow.Events() {
		drained++
	}
	if drained != 2 {
		t.Errorf("slow subscriber got %d buffered events, want 2", drained)
	}
}
