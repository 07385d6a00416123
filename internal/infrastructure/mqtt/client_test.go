package mqtt

import (
	"errors"
	"testing"
)

func newDisconnectedClient() *Client {
	return &Client{
		subscriptions: make(map[string]subscription),
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		got  string
		want string
	}{
		{topics.DeviceStatus("living_room_light"), "smarthome/living_room_light/status"},
		{topics.DeviceControl("living_room_light"), "smarthome/living_room_light/control"},
		{topics.DeviceSensor("hallway_motion"), "smarthome/hallway_motion/sensor"},
		{topics.DeviceEnergy("bedroom_ac"), "smarthome/bedroom_ac/energy"},
		{topics.SystemStatus(), "homehub/system/status"},
		{topics.AllStatus(), "smarthome/+/status"},
		{topics.AllSensor(), "smarthome/+/sensor"},
		{topics.AllEnergy(), "smarthome/+/energy"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPublishValidation(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("smarthome/x/control", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3: got %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("smarthome/+/status", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: got %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeWhileDisconnectedIsTracked(t *testing.T) {
	c := newDisconnectedClient()

	handler := func(string, []byte) error { return nil }
	if err := c.Subscribe("smarthome/+/status", 1, handler); err != nil {
		t.Fatalf("Subscribe while disconnected: %v", err)
	}

	// The subscription is tracked for installation on connect.
	if !c.HasSubscription("smarthome/+/status") {
		t.Error("subscription not tracked")
	}
	if c.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount = %d, want 1", c.SubscriptionCount())
	}

	if err := c.Unsubscribe("smarthome/+/status"); err != nil {
		t.Fatalf("Unsubscribe while disconnected: %v", err)
	}
	if c.HasSubscription("smarthome/+/status") {
		t.Error("subscription still tracked after Unsubscribe")
	}
}
