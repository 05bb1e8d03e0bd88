// Package utility defines the closed set of utility types billed by the
// system and their display names.
package utility

import "errors"

type Type string

const (
	Electricity Type = "electricity"
	WaterHot    Type = "water_hot"
	WaterCold   Type = "water_cold"
	Gas         Type = "gas"
)

var ErrUnknownType = errors.New("unknown_utility_type")

func All() []Type {
	return []Type{Electricity, WaterHot, WaterCold, Gas}
}

func Parse(raw string) (Type, error) {
	switch Type(raw) {
	case Electricity, WaterHot, WaterCold, Gas:
		return Type(raw), nil
	default:
		return "", ErrUnknownType
	}
}

func (t Type) Valid() bool {
	_, err := Parse(string(t))
	return err == nil
}

func (t Type) String() string {
	return string(t)
}

// Label returns the user-facing name shown in bot replies and exports.
func (t Type) Label() string {
	switch t {
	case Electricity:
		return "Электричество"
	case WaterHot:
		return "Горячая вода"
	case WaterCold:
		return "Холодная вода"
	case Gas:
		return "Газ"
	default:
		return string(t)
	}
}
