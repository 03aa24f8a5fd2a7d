// internal/domain/order_test.go
package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	all := []OrderStatus{StatusPending, StatusShipping, StatusDelivered, StatusCancelled}

	legal := map[OrderStatus]map[OrderStatus]bool{
		StatusPending:  {StatusShipping: true, StatusCancelled: true},
		StatusShipping: {StatusDelivered: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesAreAbsorbing(t *testing.T) {
	for _, s := range []OrderStatus{StatusDelivered, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
		if targets := Targets(s); len(targets) != 0 {
			t.Errorf("Targets(%s) = %v, want none", s, targets)
		}
	}
	for _, s := range []OrderStatus{StatusPending, StatusShipping} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    OrderStatus
		wantErr bool
	}{
		{name: "pending", raw: "pending", want: StatusPending},
		{name: "uppercase", raw: "SHIPPING", want: StatusShipping},
		{name: "padded", raw: " delivered ", want: StatusDelivered},
		{name: "cancelled", raw: "cancelled", want: StatusCancelled},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown", raw: "archived", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognizedStatus) {
					t.Errorf("ParseStatus(%q) error = %v, want ErrUnrecognizedStatus", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseStatus(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAckLabel(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		want    string
		wantErr bool
	}{
		{status: StatusShipping, want: "order confirmed for shipment"},
		{status: StatusDelivered, want: "delivery confirmed"},
		{status: StatusCancelled, want: "order cancelled"},
		{status: StatusPending, wantErr: true},
		{status: OrderStatus("refunded"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, err := AckLabel(tt.status)
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognizedStatus) {
					t.Errorf("AckLabel(%s) error = %v, want ErrUnrecognizedStatus", tt.status, err)
				}
				return
			}
			if err != nil {
				t.Errorf("AckLabel(%s) unexpected error: %v", tt.status, err)
			}
			if got != tt.want {
				t.Errorf("AckLabel(%s) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatOrderTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "midnight renders date only",
			in:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			want: "07-03-2024",
		},
		{
			name: "midnight with nanoseconds still date only",
			in:   time.Date(2024, 3, 7, 0, 0, 0, 999, time.UTC),
			want: "07-03-2024",
		},
		{
			name: "afternoon renders date and time",
			in:   time.Date(2024, 3, 7, 14, 5, 9, 0, time.UTC),
			want: "07-03-2024 14:05:09",
		},
		{
			name: "one second past midnight renders time",
			in:   time.Date(2024, 3, 7, 0, 0, 1, 0, time.UTC),
			want: "07-03-2024 00:00:01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOrderTime(tt.in); got != tt.want {
				t.Errorf("FormatOrderTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderValidate(t *testing.T) {
	orderDate := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	early := orderDate.Add(-time.Hour)
	late := orderDate.Add(72 * time.Hour)

	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{name: "no shipping date", order: Order{Status: StatusPending, OrderDate: orderDate}},
		{name: "shipping after order", order: Order{Status: StatusShipping, OrderDate: orderDate, ShippingDate: &late}},
		{name: "shipping before order", order: Order{Status: StatusShipping, OrderDate: orderDate, ShippingDate: &early}, wantErr: true},
		{name: "unknown status", order: Order{Status: OrderStatus("lost"), OrderDate: orderDate}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
