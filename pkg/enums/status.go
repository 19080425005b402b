package enums

import "fmt"

// ActiveStatus toggles visibility of reference data such as cities and UTM links.
type ActiveStatus string

const (
	ActiveStatusActive   ActiveStatus = "active"
	ActiveStatusInactive ActiveStatus = "inactive"
)

// String implements fmt.Stringer.
func (s ActiveStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ActiveStatus.
func (s ActiveStatus) IsValid() bool {
	return s == ActiveStatusActive || s == ActiveStatusInactive
}

// ParseActiveStatus converts raw input into an ActiveStatus.
func ParseActiveStatus(value string) (ActiveStatus, error) {
	status := ActiveStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status %q", value)
	}
	return status, nil
}
