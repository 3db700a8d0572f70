package service

import "errors"

var (
	// ErrNotFound is returned when a recommendation or approval does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvoiceNotCollectible is returned for invoices that need no collection, e.g. paid ones
	ErrInvoiceNotCollectible = errors.New("invoice is not collectible")

	// ErrGenerationInProgress is returned while another request generates for the same invoice
	ErrGenerationInProgress = errors.New("recommendation generation already in progress for invoice")

	// ErrRecommendationPending is returned when the invoice already has an undecided recommendation
	ErrRecommendationPending = errors.New("invoice already has a pending recommendation")

	// ErrInvalidDecision is returned for malformed decision or outcome input
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrExecutionInProgress is returned while another request executes the same approval
	ErrExecutionInProgress = errors.New("approval execution already in progress")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
