package compat

import (
	"errors"
	"strings"
)

// BloodType is one of the eight canonical ABO/Rh blood types.
type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
)

// ErrInvalidBloodType is returned when an input is not one of the eight
// canonical blood type strings.
var ErrInvalidBloodType = errors.New("invalid blood type")

// allTypes is the canonical ordering used for deterministic output.
var allTypes = []BloodType{APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative}

// AllBloodTypes returns the eight canonical blood types in canonical order.
func AllBloodTypes() []BloodType {
	out := make([]BloodType, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseBloodType normalizes and validates a blood type string ("ab+" -> AB+).
func ParseBloodType(s string) (BloodType, error) {
	t := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	for _, bt := range allTypes {
		if t == bt {
			return bt, nil
		}
	}
	return "", ErrInvalidBloodType
}

// Valid reports whether t is one of the eight canonical blood types.
func (t BloodType) Valid() bool {
	_, err := ParseBloodType(string(t))
	return err == nil
}
