package entity

import "time"

// ApprovalAction is the human disposition of a recommendation
type ApprovalAction string

const (
	ActionApproved ApprovalAction = "approved"
	ActionRejected ApprovalAction = "rejected"
	ActionModified ApprovalAction = "modified"
)

// IsValid returns true if the action is known
func (a ApprovalAction) IsValid() bool {
	switch a {
	case ActionApproved, ActionRejected, ActionModified:
		return true
	default:
		return false
	}
}

// Outcome is the result of executing an approved recommendation
type Outcome string

const (
	OutcomeNone              Outcome = ""
	OutcomeSent              Outcome = "sent"
	OutcomeFailed            Outcome = "failed"
	OutcomeCustomerResponded Outcome = "customer_responded"
)

// Approval records one human disposition on a recommendation
type Approval struct {
	ID               string         `json:"id"`
	RecommendationID string         `json:"recommendation_id"`
	Action           ApprovalAction `json:"action"`
	State            string         `json:"state"`
	ModifiedContent  *DraftEmail    `json:"modified_content,omitempty"`
	ApprovedBy       string         `json:"approved_by,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	ApprovedAt       time.Time      `json:"approved_at"`
	ExecutedAt       *time.Time     `json:"executed_at,omitempty"`
	Outcome          Outcome        `json:"outcome,omitempty"`
	ExecutionError   string         `json:"execution_error,omitempty"`
	// ExecuteRequested marks an approval for the deferred execution batch
	ExecuteRequested bool      `json:"execute_requested"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Content returns the email that execution should send: the reviewer's edit when
// the recommendation was modified, otherwise the drafted email
func (a *Approval) Content(rec *CollectionRecommendation) *DraftEmail {
	if a.Action == ActionModified && a.ModifiedContent != nil {
		return a.ModifiedContent
	}
	if rec == nil {
		return nil
	}
	return rec.DraftEmail
}
