package compat

import (
	"testing"

	"pgregory.net/rapid"
)

func TestTableSymmetry(t *testing.T) {
	// For every pair (x, y): y in receiveFrom(x) iff x in donateTo(y).
	for _, x := range AllBloodTypes() {
		for _, y := range AllBloodTypes() {
			donors, err := CompatibleDonorsFor(x)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			targets, err := Compatibility(y, CanDonateTo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			inDonors := contains(donors, y)
			inTargets := contains(targets, x)
			if inDonors != inTargets {
				t.Errorf("asymmetry for donor=%s recipient=%s: receiveFrom=%v donateTo=%v", y, x, inDonors, inTargets)
			}
		}
	}
}

func TestTableSymmetryProperty(t *testing.T) {
	gen := rapid.SampledFrom(AllBloodTypes())
	rapid.Check(t, func(t *rapid.T) {
		donor := gen.Draw(t, "donor")
		recipient := gen.Draw(t, "recipient")

		targets, err := Compatibility(donor, CanDonateTo)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		donors, err := Compatibility(recipient, CanReceiveFrom)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contains(targets, recipient) != contains(donors, donor) {
			t.Fatalf("relation not its own inverse for %s -> %s", donor, recipient)
		}
	})
}

func TestUniversalDonor(t *testing.T) {
	targets, err := Compatibility(ONegative, CanDonateTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 8 {
		t.Errorf("expected O- to donate to all 8 types, got %d", len(targets))
	}
	donors, err := Compatibility(ONegative, CanReceiveFrom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(donors) != 1 || donors[0] != ONegative {
		t.Errorf("expected O- to receive only from O-, got %v", donors)
	}
}

func TestUniversalRecipient(t *testing.T) {
	donors, err := Compatibility(ABPositive, CanReceiveFrom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(donors) != 8 {
		t.Errorf("expected AB+ to receive from all 8 types, got %d", len(donors))
	}
	targets, err := Compatibility(ABPositive, CanDonateTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 || targets[0] != ABPositive {
		t.Errorf("expected AB+ to donate only to AB+, got %v", targets)
	}
}

func TestParseBloodType(t *testing.T) {
	cases := map[string]BloodType{
		"A+":   APositive,
		"ab+":  ABPositive,
		" O- ": ONegative,
		"b-":   BNegative,
	}
	for in, want := range cases {
		got, err := ParseBloodType(in)
		if err != nil {
			t.Errorf("ParseBloodType(%q): unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseBloodType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseBloodType_Invalid(t *testing.T) {
	for _, in := range []string{"", "C+", "A", "AB", "O--", "positive"} {
		if _, err := ParseBloodType(in); err == nil {
			t.Errorf("ParseBloodType(%q): expected error", in)
		}
	}
}

func TestCompatibility_InvalidDirection(t *testing.T) {
	if _, err := Compatibility(APositive, Direction("sideways")); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestCanTransfuse(t *testing.T) {
	if !CanTransfuse(ONegative, ABPositive) {
		t.Error("O- should be transfusable to AB+")
	}
	if CanTransfuse(ABPositive, ONegative) {
		t.Error("AB+ should not be transfusable to O-")
	}
	if !CanTransfuse(APositive, APositive) {
		t.Error("same-type transfusion should be allowed")
	}
}

func contains(s []BloodType, t BloodType) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}
