package enums

import "fmt"

// OrderStatus is the fulfilment state of an order. It follows the payment
// verification outcome.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusRejected,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// OrderStatusForPayment maps a verified payment to the order state.
func OrderStatusForPayment(status PaymentStatus) OrderStatus {
	switch status {
	case PaymentStatusApproved:
		return OrderStatusApproved
	case PaymentStatusRejected:
		return OrderStatusRejected
	default:
		return OrderStatusPending
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
