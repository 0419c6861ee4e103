package enums

import "fmt"

// BillingStatus is the outcome recorded on a billing history entry.
type BillingStatus string

const (
	BillingStatusPending  BillingStatus = "pending"
	BillingStatusSuccess  BillingStatus = "success"
	BillingStatusFailed   BillingStatus = "failed"
	BillingStatusRefunded BillingStatus = "refunded"
)

var validBillingStatuses = []BillingStatus{
	BillingStatusPending,
	BillingStatusSuccess,
	BillingStatusFailed,
	BillingStatusRefunded,
}

// BillingStatuses returns every known status in display order.
func BillingStatuses() []BillingStatus {
	out := make([]BillingStatus, len(validBillingStatuses))
	copy(out, validBillingStatuses)
	return out
}

// String implements fmt.Stringer.
func (b BillingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BillingStatus.
func (b BillingStatus) IsValid() bool {
	for _, candidate := range validBillingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillingStatus converts raw input into a BillingStatus.
func ParseBillingStatus(value string) (BillingStatus, error) {
	for _, candidate := range validBillingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing status %q", value)
}
