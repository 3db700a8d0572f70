package entity

// Approval workflow states, shared with the domain workflow package
const (
	StatePending  = "PENDING"
	StateApproved = "APPROVED"
	StateRejected = "REJECTED"
	StateModified = "MODIFIED"
	StateExecuted = "EXECUTED"
)

// Capability tags bound to each model tier
const (
	CapabilityLightweightFast = "lightweight-fast"
	CapabilityMid             = "mid-capability"
	CapabilityFrontier        = "frontier-capability"
)
