// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"
)

// PaymentStatus is where an order is in the counter workflow
type PaymentStatus string

const (
	PaymentStatusPending      PaymentStatus = "pending"
	PaymentStatusPaid         PaymentStatus = "paid"
	PaymentStatusReadyToServe PaymentStatus = "ready to serve"
	PaymentStatusServed       PaymentStatus = "served"
)

// Statuses lists the workflow in order
var Statuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusReadyToServe,
	PaymentStatusServed,
}

// Valid reports whether s is a known status
func (s PaymentStatus) Valid() bool {
	return s.rank() >= 0
}

// Next returns the single status an order may move to from s. Served and
// unknown statuses have no next step.
func (s PaymentStatus) Next() (PaymentStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(Statuses)-1 {
		return "", false
	}
	return Statuses[r+1], true
}

// Action is the label of the button that moves an order out of s
func (s PaymentStatus) Action() string {
	switch s {
	case PaymentStatusPending:
		return "Mark as Paid"
	case PaymentStatusPaid:
		return "Ready to Serve"
	case PaymentStatusReadyToServe:
		return "Mark as Served"
	default:
		return ""
	}
}

func (s PaymentStatus) rank() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return -1
}

// Item is one ordered line
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// Order is the backend's order record
type Order struct {
	ID            string        `json:"_id"`
	CustomerID    string        `json:"customerId"`
	Items         []Item        `json:"items"`
	Total         float64       `json:"total"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ShortID is the last six characters of the id, as shown at the counter
func (o *Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// NextAction describes the one action available for an order
type NextAction struct {
	Label  string        `json:"label"`
	Status PaymentStatus `json:"status"`
}

// Board is an order plus the action the admin board offers for it
type Board struct {
	Order
	Next *NextAction `json:"next,omitempty"`
}

// ToBoard attaches the available action to each order
func ToBoard(orders []Order) []Board {
	out := make([]Board, len(orders))
	for i, o := range orders {
		out[i] = Board{Order: o}
		if next, ok := o.PaymentStatus.Next(); ok {
			out[i].Next = &NextAction{Label: o.PaymentStatus.Action(), Status: next}
		}
	}
	return out
}

// UpdateNotice builds the success message shown after a status change
func UpdateNotice(o *Order) (title, description string) {
	return fmt.Sprintf("Order %s updated", o.ShortID()), fmt.Sprintf("Status changed to %q", string(o.PaymentStatus))
}
