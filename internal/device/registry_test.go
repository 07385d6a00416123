package device

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func testDefinitions() []Definition {
	return []Definition{
		{
			ID: "living_room_light", Name: "Living Room Light", Room: "living_room",
			Type: DeviceTypeLight, InitialState: State{"power": "off", "brightness": 100},
		},
		{
			ID: "bedroom_ac", Name: "Bedroom AC", Room: "bedroom",
			Type: DeviceTypeAirConditioner, InitialState: State{"power": "off", "temperature": 24, "mode": "cool"},
		},
		{
			ID: "hallway_motion", Name: "Hallway Motion Sensor", Room: "hallway",
			Type: DeviceTypeMotionSensor,
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testDefinitions())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestNewRegistryRejectsDuplicateID(t *testing.T) {
	defs := testDefinitions()
	defs = append(defs, defs[0])
	_, err := NewRegistry(defs)
	if !errors.Is(err, ErrDeviceExists) {
		t.Errorf("got %v, want ErrDeviceExists", err)
	}
}

func TestNewRegistryRejectsInvalidInitialState(t *testing.T) {
	defs := []Definition{{
		ID: "lamp", Name: "Lamp", Type: DeviceTypeLight,
		InitialState: State{"brightness": 500},
	}}
	_, err := NewRegistry(defs)
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("got %v, want ErrInvalidDefinition", err)
	}
}

func TestGetReturnsDeepCopy(t *testing.T) {
	r := newTestRegistry(t)

	dev, err := r.Get("living_room_light")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Mutating the copy must not affect the registry.
	dev.State["power"] = "on"
	dev.Name = "tampered"

	again, _ := r.Get("living_room_light")
	if again.State["power"] != "off" {
		t.Error("registry state leaked through returned copy")
	}
	if again.Name != "Living Room Light" {
		t.Error("registry metadata leaked through returned copy")
	}
}

func TestGetUnknownDevice(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Get("ghost")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("got %v, want ErrDeviceNotFound", err)
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := newTestRegistry(t)

	devices := r.List("")
	if len(devices) != 3 {
		t.Fatalf("got %d devices, want 3", len(devices))
	}
	want := []string{"living_room_light", "bedroom_ac", "hallway_motion"}
	for i, id := range want {
		if devices[i].ID != id {
			t.Errorf("devices[%d].ID = %s, want %s", i, devices[i].ID, id)
		}
	}
}

func TestListRoomFilterCaseInsensitive(t *testing.T) {
	r := newTestRegistry(t)

	for _, filter := range []string{"living_room", "Living Room", "LIVING_ROOM"} {
		devices := r.List(filter)
		if len(devices) != 1 || devices[0].ID != "living_room_light" {
			t.Errorf("List(%q) = %d devices, want just living_room_light", filter, len(devices))
		}
	}

	if got := r.List("attic"); len(got) != 0 {
		t.Errorf("List(attic) = %d devices, want 0", len(got))
	}
}

func TestApplyDeltaMergesAndStampsRecency(t *testing.T) {
	r := newTestRegistry(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	dev, err := r.ApplyDelta("living_room_light", map[string]any{"power": "on"}, at)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	if dev.State["power"] != "on" {
		t.Errorf("power = %v, want on", dev.State["power"])
	}
	// Untouched attributes survive the merge.
	if dev.State["brightness"] != 100 {
		t.Errorf("brightness = %v, want 100", dev.State["brightness"])
	}
	if dev.Connectivity != ConnectivityOnline {
		t.Errorf("connectivity = %s, want online", dev.Connectivity)
	}
	if dev.LastUpdated == nil || !dev.LastUpdated.Equal(at) {
		t.Errorf("LastUpdated = %v, want %v", dev.LastUpdated, at)
	}
}

func TestApplyDeltaIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	delta := map[string]any{"power": "on", "brightness": 40}
	if _, err := r.ApplyDelta("living_room_light", delta, at); err != nil {
		t.Fatalf("first ApplyDelta: %v", err)
	}
	second, err := r.ApplyDelta("living_room_light", delta, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second ApplyDelta: %v", err)
	}

	if second.State["power"] != "on" || second.State["brightness"] != 40 {
		t.Errorf("state = %v", second.State)
	}
	if second.LastUpdated == nil || !second.LastUpdated.Equal(at.Add(time.Minute)) {
		t.Errorf("LastUpdated = %v, want the later timestamp", second.LastUpdated)
	}
}

func TestApplyDeltaAllOrNothing(t *testing.T) {
	r := newTestRegistry(t)

	// One valid attribute plus one invalid: nothing must be applied.
	_, err := r.ApplyDelta("living_room_light", map[string]any{
		"power":      "on",
		"brightness": 999,
	}, time.Now())
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}

	dev, _ := r.Get("living_room_light")
	if dev.State["power"] != "off" {
		t.Error("rejected delta was partially applied")
	}
	if dev.Connectivity != ConnectivityOffline {
		t.Error("rejected delta changed connectivity")
	}
}

func TestMarkStale(t *testing.T) {
	r := newTestRegistry(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := r.MarkOnline("living_room_light", base); err != nil {
		t.Fatalf("MarkOnline: %v", err)
	}
	if err := r.MarkOnline("bedroom_ac", base.Add(-10*time.Minute)); err != nil {
		t.Fatalf("MarkOnline: %v", err)
	}

	changed := r.MarkStale(5*time.Minute, base)
	if len(changed) != 1 || changed[0] != "bedroom_ac" {
		t.Fatalf("MarkStale changed %v, want [bedroom_ac]", changed)
	}

	ac, _ := r.Get("bedroom_ac")
	if ac.Connectivity != ConnectivityOffline {
		t.Error("stale device not marked offline")
	}
	light, _ := r.Get("living_room_light")
	if light.Connectivity != ConnectivityOnline {
		t.Error("fresh device wrongly marked offline")
	}

	// Second sweep is a no-op: already-offline devices are skipped.
	if again := r.MarkStale(5*time.Minute, base); len(again) != 0 {
		t.Errorf("second sweep changed %v, want none", again)
	}
}

func TestSetLoggerConcurrentWithUpdates(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			r.SetLogger(noopLogger{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := r.ApplyDelta("living_room_light", map[string]any{"power": "on"}, time.Now()); err != nil {
				t.Errorf("ApplyDelta: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestCount(t *testing.T) {
	r := newTestRegistry(t)
	if r.Count() != 3 {
		t.Errorf("Count = %d, want 3", r.Count())
	}
}
