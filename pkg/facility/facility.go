package facility

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"gopkg.in/yaml.v3"
)

type Kind uint8

const (
	FireStation Kind = iota
	Hospital
)

func (k Kind) Tag() mapdata.Tag {
	switch k {
	case Hospital:
		return mapdata.Tag{Key: "amenity", Value: "hospital"}
	default:
		return mapdata.Tag{Key: "amenity", Value: "fire_station"}
	}
}

func (k Kind) DefaultName() string {
	switch k {
	case Hospital:
		return "Unnamed Hospital"
	default:
		return "Unnamed Fire Station"
	}
}

func (k Kind) String() string {
	switch k {
	case Hospital:
		return "hospital"
	default:
		return "fire_station"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "fire_station", "fire":
		return FireStation, nil
	case "hospital", "ambulance":
		return Hospital, nil
	default:
		return FireStation, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown facility kind %q", s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML lets roster files spell the kind as a string.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Facility is a candidate responder station. It is read only once handed to a selector.
type Facility struct {
	Name                string         `json:"name" yaml:"name"`
	Coord               geo.Coordinate `json:"coord" yaml:"coord"`
	Kind                Kind           `json:"kind" yaml:"kind"`
	AvailableTrucks     int            `json:"available_trucks" yaml:"available_trucks"`
	AvailableAmbulances int            `json:"available_ambulances" yaml:"available_ambulances"`
	Operational         bool           `json:"operational" yaml:"operational"`
}

func (f Facility) String() string {
	return fmt.Sprintf("%s %q (%.5f, %.5f)", f.Kind, f.Name, f.Coord.Lat, f.Coord.Lon)
}
