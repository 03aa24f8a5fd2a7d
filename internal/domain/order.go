// internal/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipping  OrderStatus = "shipping"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusShipping, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition can leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// transitions holds the legal targets per current status. Delivered and
// Cancelled are absorbing.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Targets returns the legal transition targets from the given status.
func Targets(from OrderStatus) []OrderStatus {
	return transitions[from]
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ParseStatus converts external input (route parameters, request bodies) to
// an OrderStatus. Unknown input is an error, never a silent fallback.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedStatus, raw)
	}
	return s, nil
}

type User struct {
	ID          int64
	PhoneNumber string
	Password    string
	Role        string
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type LineItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice float64
	Thumbnail string
}

type Order struct {
	ID               int64
	Status           OrderStatus
	Items            []LineItem
	OrderDate        time.Time
	ShippingDate     *time.Time
	PhoneNumber      string
	RecipientName    string
	RecipientAddress string
	TotalMoney       float64
}

// Validate checks the order-level invariants: a known status and, when the
// shipping date is set, shipping date >= order date.
func (o *Order) Validate() error {
	if !o.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnrecognizedStatus, o.Status)
	}
	if o.ShippingDate != nil && o.ShippingDate.Before(o.OrderDate) {
		return fmt.Errorf("shipping date %s before order date %s",
			o.ShippingDate.Format(time.RFC3339), o.OrderDate.Format(time.RFC3339))
	}
	return nil
}

// ackLabels maps a server-confirmed status to the operator acknowledgement.
var ackLabels = map[OrderStatus]string{
	StatusShipping:  "order confirmed for shipment",
	StatusDelivered: "delivery confirmed",
	StatusCancelled: "order cancelled",
}

// AckLabel returns the acknowledgement shown after the server confirms a
// transition into status. A status outside the table is an error.
func AckLabel(status OrderStatus) (string, error) {
	label, ok := ackLabels[status]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedStatus, status)
	}
	return label, nil
}

const (
	dateLayout     = "02-01-2006"
	dateTimeLayout = "02-01-2006 15:04:05"
)

// FormatOrderTime renders a timestamp for operators: exact-midnight values
// are date-only, everything else carries the time of day.
func FormatOrderTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}
