package enums

import "fmt"

// PlanType separates the mandatory base fee from optional add-ons.
type PlanType string

const (
	PlanTypeBase  PlanType = "base"
	PlanTypeAddon PlanType = "addon"
)

var validPlanTypes = []PlanType{
	PlanTypeBase,
	PlanTypeAddon,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanType.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
