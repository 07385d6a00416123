package bus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/infrastructure/mqtt"
)

// fakeClient records subscriptions and publishes for assertions.
type fakeClient struct {
	connected bool
	subs      map[string]mqtt.MessageHandler
	published []publishedMsg
	pubErr    error
}

type publishedMsg struct {
	topic    string
	payload  []byte
	retained bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connected: true,
		subs:      make(map[string]mqtt.MessageHandler),
	}
}

func (f *fakeClient) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.subs[topic] = handler
	return nil
}

func (f *fakeClient) Publish(topic string, payload []byte, _ byte, retained bool) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, publishedMsg{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeClient) IsConnected() bool { return f.connected }

// deliver injects a raw message through the registered wildcard handler.
func (f *fakeClient) deliver(t *testing.T, pattern, topic string, payload []byte) error {
	t.Helper()
	handler, ok := f.subs[pattern]
	if !ok {
		t.Fatalf("no subscription for %s", pattern)
	}
	return handler(topic, payload)
}

func TestParseTopic(t *testing.T) {
	tests := []struct {
		topic    string
		deviceID string
		kind     ChannelKind
		wantErr  bool
	}{
		{"smarthome/living_room_light/status", "living_room_light", ChannelStatus, false},
		{"smarthome/hallway_motion/sensor", "hallway_motion", ChannelSensor, false},
		{"smarthome/bedroom_ac/energy", "bedroom_ac", ChannelEnergy, false},
		{"smarthome/x/control", "", "", true},
		{"smarthome/x", "", "", true},
		{"smarthome//status", "", "", true},
		{"other/x/status", "", "", true},
		{"smarthome/x/status/extra", "", "", true},
	}
	for _, tt := range tests {
		id, kind, err := ParseTopic(tt.topic)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedTopic) {
				t.Errorf("ParseTopic(%q): got %v, want ErrMalformedTopic", tt.topic, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTopic(%q): %v", tt.topic, err)
			continue
		}
		if id != tt.deviceID || kind != tt.kind {
			t.Errorf("ParseTopic(%q) = %s/%s, want %s/%s", tt.topic, id, kind, tt.deviceID, tt.kind)
		}
	}
}

func TestGatewayStartSubscribesReportChannels(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, pattern := range []string{"smarthome/+/status", "smarthome/+/sensor", "smarthome/+/energy"} {
		if _, ok := client.subs[pattern]; !ok {
			t.Errorf("missing subscription %s", pattern)
		}
	}
}

func TestGatewayDecodesInbound(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err := client.deliver(t, "smarthome/+/status",
		"smarthome/living_room_light/status", []byte(`{"power":"on","brightness":60}`))
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case msg := <-g.Inbound():
		if msg.DeviceID != "living_room_light" || msg.Kind != ChannelStatus {
			t.Errorf("msg = %+v", msg)
		}
		if msg.Attributes["power"] != "on" {
			t.Errorf("attributes = %v", msg.Attributes)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("ReceivedAt not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("no inbound message")
	}
}

func TestGatewayRejectsMalformedPayload(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tests := [][]byte{
		[]byte(`not json`),
		[]byte(`[1,2,3]`),
		[]byte(`null`),
	}
	for _, payload := range tests {
		err := client.deliver(t, "smarthome/+/sensor", "smarthome/hallway_motion/sensor", payload)
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("payload %q: got %v, want ErrMalformedPayload", payload, err)
		}
	}

	select {
	case msg := <-g.Inbound():
		t.Errorf("malformed payload produced message %+v", msg)
	default:
	}
}

func TestGatewayDropsWhenInboundFull(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)
	g.inbound = make(chan InboundMessage, 1)
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := client.deliver(t, "smarthome/+/energy", "smarthome/bedroom_ac/energy", []byte(`{"power_watts":900}`))
		if err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}

	// Only the first message fits; the rest were dropped, not blocked on.
	if got := len(g.inbound); got != 1 {
		t.Errorf("inbound length = %d, want 1", got)
	}
}

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Warn(string, ...any)  {}

func TestSetLoggerConcurrentWithHandlers(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)
	g.inbound = make(chan InboundMessage, 1)
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			g.SetLogger(quietLogger{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			// A full inbound channel forces the drop path, which logs.
			err := client.deliver(t, "smarthome/+/status",
				"smarthome/living_room_light/status", []byte(`{"power":"on"}`))
			if err != nil {
				t.Errorf("deliver: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestPublishCommand(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, 1)

	cmd := &device.Command{
		DeviceID:   "living_room_light",
		Attributes: map[string]any{"power": "on"},
		Origin:     device.OriginAPI,
	}
	if err := g.PublishCommand(cmd); err != nil {
		t.Fatalf("PublishCommand: %v", err)
	}

	if len(client.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.published))
	}
	pub := client.published[0]
	if pub.topic != "smarthome/living_room_light/control" {
		t.Errorf("topic = %s", pub.topic)
	}
	if pub.retained {
		t.Error("commands must not be retained")
	}

	var decoded map[string]any
	if err := json.Unmarshal(pub.payload, &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded["power"] != "on" {
		t.Errorf("payload = %v", decoded)
	}
}

func TestPublishCommandBusDown(t *testing.T) {
	client := newFakeClient()
	client.connected = false
	g := NewGateway(client, 1)

	cmd := &device.Command{DeviceID: "living_room_light", Attributes: map[string]any{"power": "on"}}
	err := g.PublishCommand(cmd)
	if !errors.Is(err, ErrBusUnavailable) {
		t.Errorf("got %v, want ErrBusUnavailable", err)
	}
	if len(client.published) != 0 {
		t.Error("command published while disconnected")
	}
}
