package bus

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/infrastructure/mqtt"
)

// defaultInboundBuffer bounds the inbound message channel. A slow
// consumer causes drops rather than unbounded memory growth.
const defaultInboundBuffer = 256

// InboundMessage is a decoded device-bus message ready for processing.
type InboundMessage struct {
	DeviceID   string
	Kind       ChannelKind
	Attributes map[string]any
	ReceivedAt time.Time
}

// Client is the broker surface the gateway needs. Satisfied by
// *mqtt.Client; tests substitute a fake.
type Client interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Logger is the logging surface used by the gateway.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Gateway is the hub's only MQTT touchpoint for device traffic.
//
// Inbound: it subscribes to the status, sensor, and energy wildcards,
// decodes each message, and forwards it on a bounded channel consumed
// by the state synchronizer. Messages that cannot be decoded are
// logged and dropped; they never stop the stream. When the channel is
// full the message is dropped with a warning — device state converges
// from the next report.
//
// Outbound: PublishCommand renders a validated command to the device's
// control topic.
type Gateway struct {
	client  Client
	qos     byte
	inbound chan InboundMessage
	topics  mqtt.Topics

	// logger is read from paho's handler goroutines and HTTP handlers
	// concurrently (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// NewGateway creates a gateway over the given broker client.
func NewGateway(client Client, qos byte) *Gateway {
	return &Gateway{
		client:  client,
		qos:     qos,
		inbound: make(chan InboundMessage, defaultInboundBuffer),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the gateway.
// Safe to call concurrently with message handling.
func (g *Gateway) SetLogger(logger Logger) {
	g.loggerMu.Lock()
	defer g.loggerMu.Unlock()
	g.logger = logger
}

// getLogger returns the current logger.
func (g *Gateway) getLogger() Logger {
	g.loggerMu.RLock()
	defer g.loggerMu.RUnlock()
	return g.logger
}

// Inbound returns the channel of decoded device messages.
// The state synchronizer is the single consumer.
func (g *Gateway) Inbound() <-chan InboundMessage {
	return g.inbound
}

// Start subscribes to all device report channels.
//
// Subscriptions registered while the broker is down are installed when
// it comes up, so Start succeeds during a degraded boot.
func (g *Gateway) Start() error {
	subs := []string{
		g.topics.AllStatus(),
		g.topics.AllSensor(),
		g.topics.AllEnergy(),
	}
	for _, topic := range subs {
		if err := g.client.Subscribe(topic, g.qos, g.handleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

// handleMessage decodes one raw bus message and enqueues it.
// Runs on paho's handler goroutines; must not block.
func (g *Gateway) handleMessage(topic string, payload []byte) error {
	deviceID, kind, err := ParseTopic(topic)
	if err != nil {
		return err
	}

	attrs, err := decodePayload(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}

	msg := InboundMessage{
		DeviceID:   deviceID,
		Kind:       kind,
		Attributes: attrs,
		ReceivedAt: time.Now().UTC(),
	}

	select {
	case g.inbound <- msg:
	default:
		g.getLogger().Warn("inbound channel full, dropping message",
			"device_id", deviceID,
			"channel", string(kind),
		)
	}
	return nil
}

// decodePayload parses a JSON object of attribute values.
func decodePayload(payload []byte) (map[string]any, error) {
	var attrs map[string]any
	if err := json.Unmarshal(payload, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if attrs == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}
	return attrs, nil
}

// PublishCommand renders a validated command onto the device's control
// topic. Commands are fire-and-forget: there is no acknowledgment
// tracking, confirmation arrives as a status report from the device.
//
// Returns ErrBusUnavailable if the broker connection is down. The
// command is not queued; the caller reports the failure upstream.
func (g *Gateway) PublishCommand(cmd *device.Command) error {
	if !g.client.IsConnected() {
		return fmt.Errorf("%w: command for %s not sent", ErrBusUnavailable, cmd.DeviceID)
	}

	payload, err := json.Marshal(cmd.Attributes)
	if err != nil {
		return fmt.Errorf("encoding command for %s: %w", cmd.DeviceID, err)
	}

	topic := g.topics.DeviceControl(cmd.DeviceID)
	if err := g.client.Publish(topic, payload, g.qos, false); err != nil {
		return fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}

	g.getLogger().Debug("command published",
		"device_id", cmd.DeviceID,
		"origin", string(cmd.Origin),
	)
	return nil
}
