package device

import "fmt"

// AttributeKind classifies how an attribute's values are validated.
type AttributeKind string

// Attribute kinds.
const (
	// KindNumber is a numeric attribute with an inclusive min/max range.
	KindNumber AttributeKind = "number"

	// KindEnum is a string attribute restricted to a fixed value set.
	// Membership checks are exact and case-sensitive.
	KindEnum AttributeKind = "enum"
)

// Attribute declares the legal values for a single controllable attribute.
type Attribute struct {
	Kind AttributeKind `json:"kind"`

	// Min and Max bound number attributes (inclusive). Ignored for enums.
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`

	// Enum lists the legal values for enum attributes. Ignored for numbers.
	Enum []string `json:"enum,omitempty"`
}

// Schema is the capability schema for a device type: the set of
// controllable attributes and their legal ranges. Schemas are data,
// not behaviour — validation and control rendering both switch on the
// device type tag that selected the schema.
type Schema struct {
	// ReadOnly marks device types that accept no control commands at all
	// (sensors). Inbound readings from such devices still flow through
	// the sensor channel; they just have no controllable attributes.
	ReadOnly bool `json:"read_only,omitempty"`

	Attributes map[string]Attribute `json:"attributes,omitempty"`
}

func (s Schema) deepCopy() Schema {
	cpy := s
	if s.Attributes != nil {
		cpy.Attributes = make(map[string]Attribute, len(s.Attributes))
		for name, attr := range s.Attributes {
			a := attr
			if attr.Enum != nil {
				a.Enum = make([]string, len(attr.Enum))
				copy(a.Enum, attr.Enum)
			}
			cpy.Attributes[name] = a
		}
	}
	return cpy
}

// powerEnum is the shared on/off attribute used by every switchable type.
var powerEnum = Attribute{Kind: KindEnum, Enum: []string{"on", "off"}}

// SchemaFor returns the capability schema for a device type.
//
// Unknown types are treated as read-only with no controllable
// attributes: the type set is open, but a device the hub knows nothing
// about must never accept control commands.
func SchemaFor(t DeviceType) Schema {
	switch t {
	case DeviceTypeLight:
		return Schema{Attributes: map[string]Attribute{
			"power":      powerEnum,
			"brightness": {Kind: KindNumber, Min: 0, Max: 100},
		}}
	case DeviceTypeFan:
		return Schema{Attributes: map[string]Attribute{
			"power": powerEnum,
			"speed": {Kind: KindNumber, Min: 0, Max: 5},
		}}
	case DeviceTypeAirConditioner:
		return Schema{Attributes: map[string]Attribute{
			"power":       powerEnum,
			"temperature": {Kind: KindNumber, Min: 16, Max: 30},
			"mode":        {Kind: KindEnum, Enum: []string{"cool", "heat", "auto"}},
		}}
	case DeviceTypeMotionSensor:
		return Schema{ReadOnly: true}
	default:
		return Schema{ReadOnly: true}
	}
}

// CheckDelta validates a partial attribute->value mapping against the
// schema. All attributes are checked before any error shortcuts partial
// knowledge: the first failure found is returned, and callers must not
// apply any part of a delta that failed.
//
// Out-of-range values are rejected, never clamped.
func (s Schema) CheckDelta(delta map[string]any) error {
	for name, value := range delta {
		attr, ok := s.Attributes[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		if err := attr.check(name, value); err != nil {
			return err
		}
	}
	return nil
}

// check validates a single value against the attribute declaration.
func (a Attribute) check(name string, value any) error {
	switch a.Kind {
	case KindNumber:
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %q must be numeric", ErrOutOfRange, name)
		}
		if n < a.Min || n > a.Max {
			return fmt.Errorf("%w: %q = %v (allowed %v..%v)", ErrOutOfRange, name, n, a.Min, a.Max)
		}
	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %q must be a string", ErrOutOfRange, name)
		}
		for _, allowed := range a.Enum {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%w: %q = %q (allowed %v)", ErrOutOfRange, name, s, a.Enum)
	default:
		return fmt.Errorf("%w: %q has unknown kind %q", ErrUnknownAttribute, name, a.Kind)
	}
	return nil
}

// toFloat normalises the numeric types produced by JSON decoding and
// Go literals in tests.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
