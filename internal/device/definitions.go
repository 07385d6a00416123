package device

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes one device in the static configuration source.
// The hub requires a finite, ordered list of these at boot; where the
// list comes from (file, generated, hardcoded in tests) is not the
// registry's concern.
type Definition struct {
	ID   string     `yaml:"id" json:"id"`
	Name string     `yaml:"name" json:"name"`
	Room string     `yaml:"room" json:"room"`
	Type DeviceType `yaml:"type" json:"type"`

	// InitialState seeds the device state at boot. It must satisfy the
	// type's capability schema.
	InitialState State `yaml:"initial_state,omitempty" json:"initial_state,omitempty"`
}

// definitionsFile is the YAML document shape of the device file.
type definitionsFile struct {
	Devices []Definition `yaml:"devices"`
}

// LoadDefinitions reads the device definition file.
//
// The file lists devices in the order they should be registered:
//
//	devices:
//	  - id: living_room_light
//	    name: Living Room Light
//	    room: living_room
//	    type: light
//	    initial_state: {power: "off", brightness: 100}
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device definitions: %w", err)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing device definitions: %w", err)
	}
	if len(file.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices defined in %s", ErrInvalidDefinition, path)
	}

	return file.Devices, nil
}

// build validates a definition and constructs its Device.
func (d Definition) build() (*Device, error) {
	if strings.TrimSpace(d.ID) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("%w: %s: name is required", ErrInvalidDefinition, d.ID)
	}
	if d.Type == "" {
		return nil, fmt.Errorf("%w: %s: type is required", ErrInvalidDefinition, d.ID)
	}

	schema := SchemaFor(d.Type)
	if len(d.InitialState) > 0 {
		if err := schema.CheckDelta(d.InitialState); err != nil {
			return nil, fmt.Errorf("%w: %s: initial state: %v", ErrInvalidDefinition, d.ID, err)
		}
	}

	return &Device{
		ID:           d.ID,
		Name:         d.Name,
		Room:         d.Room,
		Type:         d.Type,
		Schema:       schema,
		State:        copyState(d.InitialState),
		Connectivity: ConnectivityOffline,
	}, nil
}

// normaliseRoom lowercases a room label and folds spaces to underscores
// so "Living Room" and "living_room" group together.
func normaliseRoom(room string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(room)), " ", "_")
}
