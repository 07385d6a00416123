package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/wrenhall/homehub/internal/device"
)

// Registry is the device lookup surface the resolver needs.
// Satisfied by *device.Registry.
type Registry interface {
	List(roomFilter string) []device.Device
	Get(id string) (*device.Device, error)
}

// Validator normalises proposed commands. Satisfied by *device.Validator.
type Validator interface {
	Validate(deviceID string, attrs map[string]any, origin device.Origin) (*device.Command, error)
}

// Dispatcher publishes validated commands. Satisfied by *bus.Gateway.
type Dispatcher interface {
	PublishCommand(cmd *device.Command) error
}

// Logger is the logging surface used by the resolver.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Resolver turns a natural-language utterance into dispatched device
// commands.
//
// The language service is an untrusted oracle: every command it
// proposes runs through the same validator as direct API calls before
// it reaches the bus. A group action ("all lights") expands to one
// command per matching device. Partial success is allowed — a failing
// command is logged and skipped, and the executed count reports how
// many actually went out.
type Resolver struct {
	interpreter Interpreter
	registry    Registry
	validator   Validator
	dispatcher  Dispatcher
	logger      Logger
}

// NewResolver wires the resolver's collaborators.
func NewResolver(interpreter Interpreter, registry Registry, validator Validator, dispatcher Dispatcher, logger Logger) *Resolver {
	return &Resolver{
		interpreter: interpreter,
		registry:    registry,
		validator:   validator,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Resolve interprets one utterance and dispatches the resulting commands.
//
// Interpretation failure returns ErrResolution and dispatches nothing.
// After a successful interpretation, each expanded command is validated
// and dispatched independently.
func (r *Resolver) Resolve(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty command text", ErrResolution)
	}

	intent, err := r.interpreter.Interpret(ctx, text, r.registry.List(""))
	if err != nil {
		return nil, err
	}

	executed := 0
	for _, action := range intent.Actions {
		for _, target := range r.expandTargets(action) {
			cmd, err := r.validator.Validate(target, action.Attributes, device.OriginAssist)
			if err != nil {
				r.logger.Info("assist command rejected",
					"device_id", target,
					"error", err,
				)
				continue
			}
			if err := r.dispatcher.PublishCommand(cmd); err != nil {
				r.logger.Warn("assist command dispatch failed",
					"device_id", target,
					"error", err,
				)
				continue
			}
			executed++
		}
	}

	r.logger.Debug("utterance resolved", "actions", len(intent.Actions), "executed", executed)

	return &Result{
		Response: intent.Response,
		Executed: executed,
	}, nil
}

// expandTargets maps an action to concrete device ids.
//
// An explicit device id wins. Otherwise the registry is filtered by
// type and, if given, room. An unknown id or an empty selection yields
// no targets; the caller's executed count simply doesn't grow.
func (r *Resolver) expandTargets(action Action) []string {
	if action.DeviceID != "" {
		if _, err := r.registry.Get(action.DeviceID); err != nil {
			r.logger.Info("assist action targets unknown device", "device_id", action.DeviceID)
			return nil
		}
		return []string{action.DeviceID}
	}

	if action.DeviceType == "" {
		return nil
	}

	var ids []string
	for _, d := range r.registry.List(action.Room) {
		if string(d.Type) == action.DeviceType {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
