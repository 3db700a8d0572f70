package entity

import (
	"math"
	"time"
)

// InvoiceStatus is the stored payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPartial InvoiceStatus = "partial"
)

// IsValid returns true if the status is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusPartial:
		return true
	default:
		return false
	}
}

// Invoice is a read-only snapshot of a receivable
type Invoice struct {
	ID         string        `json:"id"`
	Number     string        `json:"number"`
	CustomerID string        `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Currency   string        `json:"currency,omitempty"`
	IssueDate  time.Time     `json:"issue_date"`
	DueDate    time.Time     `json:"due_date"`
	Status     InvoiceStatus `json:"status"`
	// PaymentTerms is a free-text summary such as "Net 30"
	PaymentTerms string `json:"payment_terms,omitempty"`
}

// DaysPastDue returns whole days elapsed since the due date, never negative.
// It is always derived and never stored.
func (i *Invoice) DaysPastDue(asOf time.Time) int {
	if i.DueDate.IsZero() || !asOf.After(i.DueDate) {
		return 0
	}
	return int(math.Floor(asOf.Sub(i.DueDate).Hours() / 24))
}

// IsPaid reports whether the invoice needs no collection
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// EffectiveStatus derives the status at asOf: overdue only when past due and unpaid
func (i *Invoice) EffectiveStatus(asOf time.Time) InvoiceStatus {
	switch i.Status {
	case InvoiceStatusPaid, InvoiceStatusPartial:
		return i.Status
	}
	if i.DaysPastDue(asOf) > 0 {
		return InvoiceStatusOverdue
	}
	return InvoiceStatusPending
}
