package recommendation

import "errors"

var (
	// ErrGenerationFailed is returned when both the intended and the fallback capability fail
	ErrGenerationFailed = errors.New("recommendation generation failed")

	// ErrDraftTimeout marks a capability call that exceeded its tier timeout
	ErrDraftTimeout = errors.New("drafting capability timed out")

	// ErrUnparseableDraft marks capability output that is not a valid recommendation
	ErrUnparseableDraft = errors.New("unparseable drafting response")

	// ErrNoCapability marks a tier with no bound capability
	ErrNoCapability = errors.New("no drafting capability bound to tier")
)
