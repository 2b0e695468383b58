package compat

// Direction selects which side of the compatibility relation to look up.
type Direction string

const (
	CanDonateTo    Direction = "canDonateTo"
	CanReceiveFrom Direction = "canReceiveFrom"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case CanDonateTo, CanReceiveFrom:
		return Direction(s), true
	}
	return "", false
}

// donateTo is the fixed ABO/Rh donation table. canReceiveFrom is derived from
// it at package init so the two sides cannot drift apart.
var donateTo = map[BloodType][]BloodType{
	ONegative:  {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative},
	OPositive:  {APositive, BPositive, ABPositive, OPositive},
	ANegative:  {APositive, ANegative, ABPositive, ABNegative},
	APositive:  {APositive, ABPositive},
	BNegative:  {BPositive, BNegative, ABPositive, ABNegative},
	BPositive:  {BPositive, ABPositive},
	ABNegative: {ABPositive, ABNegative},
	ABPositive: {ABPositive},
}

var receiveFrom map[BloodType][]BloodType

func init() {
	receiveFrom = invert(donateTo)
}

// invert builds the recipient->donors relation from the donor->recipients
// relation, preserving canonical blood type order.
func invert(table map[BloodType][]BloodType) map[BloodType][]BloodType {
	out := make(map[BloodType][]BloodType, len(allTypes))
	for _, recipient := range allTypes {
		var donors []BloodType
		for _, donor := range allTypes {
			for _, target := range table[donor] {
				if target == recipient {
					donors = append(donors, donor)
					break
				}
			}
		}
		out[recipient] = donors
	}
	return out
}

// CompatibleDonorsFor returns every blood type that can donate to the
// required type.
func CompatibleDonorsFor(required BloodType) ([]BloodType, error) {
	return Compatibility(required, CanReceiveFrom)
}

// Compatibility looks up one side of the relation for the given blood type.
// The returned slice is a copy and safe to modify.
func Compatibility(t BloodType, d Direction) ([]BloodType, error) {
	bt, err := ParseBloodType(string(t))
	if err != nil {
		return nil, err
	}
	var src []BloodType
	switch d {
	case CanDonateTo:
		src = donateTo[bt]
	case CanReceiveFrom:
		src = receiveFrom[bt]
	default:
		return nil, ErrInvalidBloodType
	}
	out := make([]BloodType, len(src))
	copy(out, src)
	return out, nil
}

// CanTransfuse reports whether blood of type donor may be given to a
// recipient of type recipient.
func CanTransfuse(donor, recipient BloodType) bool {
	targets, err := Compatibility(donor, CanDonateTo)
	if err != nil {
		return false
	}
	for _, t := range targets {
		if t == recipient {
			return true
		}
	}
	return false
}
