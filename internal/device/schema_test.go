package device

import (
	"errors"
	"testing"
)

func TestSchemaForKnownTypes(t *testing.T) {
	light := SchemaFor(DeviceTypeLight)
	if light.ReadOnly {
		t.Error("light schema should not be read-only")
	}
	if _, ok := light.Attributes["brightness"]; !ok {
		t.Error("light schema missing brightness")
	}

	ac := SchemaFor(DeviceTypeAirConditioner)
	temp, ok := ac.Attributes["temperature"]
	if !ok {
		t.Fatal("ac schema missing temperature")
	}
	if temp.Min != 16 || temp.Max != 30 {
		t.Errorf("temperature range = %v..%v, want 16..30", temp.Min, temp.Max)
	}

	sensor := SchemaFor(DeviceTypeMotionSensor)
	if !sensor.ReadOnly {
		t.Error("motion sensor schema should be read-only")
	}
}

func TestSchemaForUnknownTypeIsReadOnly(t *testing.T) {
	s := SchemaFor(DeviceType("quantum_kettle"))
	if !s.ReadOnly {
		t.Error("unknown type should map to a read-only schema")
	}
	if len(s.Attributes) != 0 {
		t.Errorf("unknown type should have no attributes, got %d", len(s.Attributes))
	}
}

func TestCheckDeltaRangeBoundaries(t *testing.T) {
	s := SchemaFor(DeviceTypeLight)

	// Inclusive boundaries are valid.
	for _, v := range []int{0, 100} {
		if err := s.CheckDelta(map[string]any{"brightness": v}); err != nil {
			t.Errorf("brightness %d should be valid: %v", v, err)
		}
	}

	// One past each boundary is rejected.
	for _, v := range []int{-1, 101} {
		err := s.CheckDelta(map[string]any{"brightness": v})
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("brightness %d: got %v, want ErrOutOfRange", v, err)
		}
	}
}

func TestCheckDeltaEnumExactMatch(t *testing.T) {
	s := SchemaFor(DeviceTypeAirConditioner)

	if err := s.CheckDelta(map[string]any{"mode": "cool"}); err != nil {
		t.Errorf("mode cool should be valid: %v", err)
	}

	// Case-sensitive: "Cool" is not a member.
	err := s.CheckDelta(map[string]any{"mode": "Cool"})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("mode Cool: got %v, want ErrOutOfRange", err)
	}

	// Non-string value for an enum attribute.
	err = s.CheckDelta(map[string]any{"power": 1})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("numeric power: got %v, want ErrOutOfRange", err)
	}
}

func TestCheckDeltaUnknownAttribute(t *testing.T) {
	s := SchemaFor(DeviceTypeFan)
	err := s.CheckDelta(map[string]any{"colour": "red"})
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("got %v, want ErrUnknownAttribute", err)
	}
}

func TestCheckDeltaNumericDecodeForms(t *testing.T) {
	s := SchemaFor(DeviceTypeFan)

	// JSON decoding yields float64; Go callers pass int.
	for _, v := range []any{float64(3), int(3), int64(3), float32(3)} {
		if err := s.CheckDelta(map[string]any{"speed": v}); err != nil {
			t.Errorf("speed %T(%v) should be valid: %v", v, v, err)
		}
	}

	err := s.CheckDelta(map[string]any{"speed": "fast"})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("string speed: got %v, want ErrOutOfRange", err)
	}
}
