package port

import "errors"

// ErrLockHeld is returned by InvoiceLocker when another generation holds the lock
var ErrLockHeld = errors.New("invoice lock held")

// ErrPendingExists is returned by RecommendationRepository.Create when the invoice
// already has a pending recommendation
var ErrPendingExists = errors.New("pending recommendation exists for invoice")

// ErrApprovalExists is returned by ApprovalRepository.Create when the recommendation
// already has a recorded decision
var ErrApprovalExists = errors.New("approval exists for recommendation")
