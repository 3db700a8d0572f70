package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	appworkflow "github.com/garyjia/ai-collections/internal/application/workflow"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/domain/workflow"
	"github.com/google/uuid"
)

// DecisionInput is a reviewer's disposition of a recommendation
type DecisionInput struct {
	RecommendationID string
	Action           entity.ApprovalAction
	ModifiedContent  *entity.DraftEmail
	ApprovedBy       string
	Notes            string
	// ExecuteNow sends the approved content synchronously
	ExecuteNow bool
	// Deferred queues the approval for the execution worker
	Deferred bool
}

// DecisionResult is the recorded approval, plus the execution attempt when one ran
type DecisionResult struct {
	Approval  *entity.Approval `json:"approval"`
	Execution *ExecutionResult `json:"execution,omitempty"`
}

// ExecutionResult reports one execution attempt. A failed send is a result, not an error.
type ExecutionResult struct {
	Approval         *entity.Approval `json:"approval"`
	Success          bool             `json:"success"`
	MessageID        string           `json:"message_id,omitempty"`
	Error            string           `json:"error,omitempty"`
	ActivityWarnings []string         `json:"activity_warnings,omitempty"`
}

// ApprovalService records human decisions and executes approved recommendations
type ApprovalService interface {
	Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error)
	Execute(ctx context.Context, approvalID string) (*ExecutionResult, error)
	RecordOutcome(ctx context.Context, approvalID string, outcome entity.Outcome) (*entity.Approval, error)
	Get(ctx context.Context, approvalID string) (*entity.Approval, error)
	// FindByRecommendation returns nil when the recommendation is undecided
	FindByRecommendation(ctx context.Context, recommendationID string) (*entity.Approval, error)
}

// ApprovalServiceConfig holds approval workflow settings
type ApprovalServiceConfig struct {
	// ActivityTimeout bounds the wait for all activity loggers after a send
	ActivityTimeout time.Duration
}

type approvalServiceImpl struct {
	recRepo         port.RecommendationRepository
	approvalRepo    port.ApprovalRepository
	txManager       port.TransactionManager
	executor        port.CollectionExecutor
	activityLoggers []port.ActivityLogger
	locker          port.InvoiceLocker
	metrics         port.RecommendationMetrics
	cfg             ApprovalServiceConfig
	logger          Logger

	now   func() time.Time
	newID func() string
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	recRepo port.RecommendationRepository,
	approvalRepo port.ApprovalRepository,
	txManager port.TransactionManager,
	executor port.CollectionExecutor,
	activityLoggers []port.ActivityLogger,
	locker port.InvoiceLocker,
	metrics port.RecommendationMetrics,
	cfg ApprovalServiceConfig,
	logger Logger,
) ApprovalService {
	if cfg.ActivityTimeout <= 0 {
		cfg.ActivityTimeout = 5 * time.Second
	}
	return &approvalServiceImpl{
		recRepo:         recRepo,
		approvalRepo:    approvalRepo,
		txManager:       txManager,
		executor:        executor,
		activityLoggers: activityLoggers,
		locker:          locker,
		metrics:         metrics,
		cfg:             cfg,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

// Decide records the decision and moves the recommendation out of pending
func (s *approvalServiceImpl) Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	if err := validateDecision(input); err != nil {
		return nil, err
	}

	rec, err := s.recRepo.GetByID(ctx, input.RecommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s: %w", input.RecommendationID, ErrNotFound)
	}

	targetState, trigger, _ := workflow.StateForAction(input.Action)
	machine, err := machineFor(stateOf(rec.Status), nil)
	if err != nil {
		return nil, fmt.Errorf("recommendation %s: %w", rec.ID, err)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, fmt.Errorf("recommendation %s: %w", rec.ID, err)
	}

	now := s.now()
	approval := &entity.Approval{
		ID:               s.newID(),
		RecommendationID: rec.ID,
		Action:           input.Action,
		State:            string(targetState),
		ApprovedBy:       input.ApprovedBy,
		Notes:            input.Notes,
		ApprovedAt:       now,
		UpdatedAt:        now,
		ExecuteRequested: input.Deferred,
	}
	if input.Action == entity.ActionModified {
		approval.ModifiedContent = input.ModifiedContent
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.approvalRepo.Create(txCtx, approval); err != nil {
			return err
		}
		return s.recRepo.UpdateStatus(txCtx, rec.ID, statusOf(targetState))
	})
	if errors.Is(err, port.ErrApprovalExists) {
		return nil, fmt.Errorf("%w: recommendation %s was already decided", workflow.ErrInvalidTransition, rec.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	s.metrics.ObserveDecision(input.Action)
	s.logger.Info("Recommendation decided",
		"recommendation_id", rec.ID,
		"approval_id", approval.ID,
		"action", input.Action,
		"approved_by", input.ApprovedBy,
		"deferred", input.Deferred)

	result := &DecisionResult{Approval: approval}
	if input.ExecuteNow {
		execution, err := s.execute(ctx, approval, rec)
		if err != nil {
			return nil, err
		}
		result.Approval = execution.Approval
		result.Execution = execution
	}
	return result, nil
}

// Execute sends the approved content. Allowed only from approved or modified.
func (s *approvalServiceImpl) Execute(ctx context.Context, approvalID string) (*ExecutionResult, error) {
	approval, err := s.Get(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	rec, err := s.recRepo.GetByID(ctx, approval.RecommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s: %w", approval.RecommendationID, ErrNotFound)
	}

	return s.execute(ctx, approval, rec)
}

func (s *approvalServiceImpl) execute(ctx context.Context, approval *entity.Approval, rec *entity.CollectionRecommendation) (*ExecutionResult, error) {
	machine, err := machineFor(workflow.State(approval.State), nil)
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", approval.ID, err)
	}
	if !machine.CanFire(workflow.TriggerExecute) {
		return nil, fmt.Errorf("%w: cannot execute approval %s in state %s",
			workflow.ErrInvalidTransition, approval.ID, approval.State)
	}

	release, err := s.locker.Acquire(ctx, "approval:"+approval.ID)
	if err != nil {
		if errors.Is(err, port.ErrLockHeld) {
			return nil, fmt.Errorf("%w: %s", ErrExecutionInProgress, approval.ID)
		}
		return nil, fmt.Errorf("failed to lock approval: %w", err)
	}
	defer release()

	// The state read above may predate an execution that finished while we waited for the lock
	approval, err = s.Get(ctx, approval.ID)
	if err != nil {
		return nil, err
	}
	fromState := approval.State

	content := approval.Content(rec)
	machine, err = machineFor(workflow.State(fromState), func(context.Context) bool { return content != nil })
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", approval.ID, err)
	}
	if err := machine.Fire(ctx, workflow.TriggerExecute); err != nil {
		if errors.Is(err, workflow.ErrGuardFailed) {
			return s.recordFailure(ctx, approval, errors.New("no email content to send"))
		}
		return nil, fmt.Errorf("approval %s: %w", approval.ID, err)
	}

	sent, err := s.executor.Execute(ctx, port.ExecutionRequest{
		RecommendationID: rec.ID,
		ApprovalID:       approval.ID,
		CustomerEmail:    rec.CustomerEmail,
		InvoiceNumber:    rec.InvoiceNumber,
		Email:            *content,
	})
	if err != nil {
		return s.recordFailure(ctx, approval, err)
	}

	now := s.now()
	approval.State = string(machine.State())
	approval.Outcome = entity.OutcomeSent
	approval.ExecutedAt = &now
	approval.ExecutionError = ""
	approval.ExecuteRequested = false
	approval.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.approvalRepo.Update(txCtx, approval, fromState); err != nil {
			return err
		}
		return s.recRepo.UpdateStatus(txCtx, rec.ID, entity.RecommendationExecuted)
	})
	if err != nil {
		// The email is out; the stored state lags until an operator reconciles it
		s.logger.Error("Failed to record executed approval",
			"approval_id", approval.ID,
			"message_id", sent.MessageID,
			"error", err)
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}

	s.metrics.ObserveExecution(entity.OutcomeSent)
	s.logger.Info("Approval executed",
		"approval_id", approval.ID,
		"recommendation_id", rec.ID,
		"message_id", sent.MessageID)

	warnings := s.logActivity(ctx, rec, content)

	return &ExecutionResult{
		Approval:         approval,
		Success:          true,
		MessageID:        sent.MessageID,
		ActivityWarnings: warnings,
	}, nil
}

// recordFailure keeps the state so execution can be retried
func (s *approvalServiceImpl) recordFailure(ctx context.Context, approval *entity.Approval, cause error) (*ExecutionResult, error) {
	approval.Outcome = entity.OutcomeFailed
	approval.ExecutionError = cause.Error()
	approval.ExecuteRequested = false
	approval.UpdatedAt = s.now()

	if err := s.approvalRepo.Update(ctx, approval, approval.State); err != nil {
		return nil, fmt.Errorf("failed to record execution failure: %w", err)
	}

	s.metrics.ObserveExecution(entity.OutcomeFailed)
	s.logger.Warn("Approval execution failed",
		"approval_id", approval.ID,
		"error", cause)

	return &ExecutionResult{
		Approval: approval,
		Success:  false,
		Error:    cause.Error(),
	}, nil
}

type activityResult struct {
	system string
	err    error
}

// logActivity fans out to every activity logger and waits up to the activity timeout.
// Failures and stragglers become warnings.
func (s *approvalServiceImpl) logActivity(ctx context.Context, rec *entity.CollectionRecommendation, content *entity.DraftEmail) []string {
	if len(s.activityLoggers) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ActivityTimeout)
	defer cancel()

	activity := port.Activity{
		CustomerExternalID: rec.CustomerExternalID,
		InvoiceNumber:      rec.InvoiceNumber,
		Strategy:           rec.RecommendedAction,
		Description:        fmt.Sprintf("Sent %q (%s tone, %s tier)", content.Subject, rec.Tone, rec.ModelTier),
	}

	results := make(chan activityResult, len(s.activityLoggers))
	for _, l := range s.activityLoggers {
		go func(l port.ActivityLogger) {
			results <- activityResult{system: l.Name(), err: l.LogActivity(ctx, activity)}
		}(l)
	}

	var warnings []string
	reported := make(map[string]bool, len(s.activityLoggers))
	for range s.activityLoggers {
		select {
		case r := <-results:
			reported[r.system] = true
			s.metrics.ObserveActivityLog(r.system, r.err == nil)
			if r.err != nil {
				s.logger.Warn("Activity logging failed", "system", r.system, "error", r.err)
				warnings = append(warnings, fmt.Sprintf("%s: %v", r.system, r.err))
			}
		case <-ctx.Done():
			for _, l := range s.activityLoggers {
				if !reported[l.Name()] {
					reported[l.Name()] = true
					s.metrics.ObserveActivityLog(l.Name(), false)
					s.logger.Warn("Activity logging timed out", "system", l.Name())
					warnings = append(warnings, fmt.Sprintf("%s: %v", l.Name(), ctx.Err()))
				}
			}
			sort.Strings(warnings)
			return warnings
		}
	}

	sort.Strings(warnings)
	return warnings
}

// RecordOutcome marks a customer response on an executed approval
func (s *approvalServiceImpl) RecordOutcome(ctx context.Context, approvalID string, outcome entity.Outcome) (*entity.Approval, error) {
	if outcome != entity.OutcomeCustomerResponded {
		return nil, fmt.Errorf("%w: unsupported outcome %q", ErrInvalidDecision, outcome)
	}

	approval, err := s.Get(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if workflow.State(approval.State) != workflow.StateExecuted {
		return nil, fmt.Errorf("%w: outcome requires an executed approval, %s is %s",
			workflow.ErrInvalidTransition, approval.ID, approval.State)
	}

	approval.Outcome = outcome
	approval.UpdatedAt = s.now()
	if err := s.approvalRepo.Update(ctx, approval, entity.StateExecuted); err != nil {
		return nil, fmt.Errorf("failed to record outcome: %w", err)
	}

	s.logger.Info("Outcome recorded", "approval_id", approval.ID, "outcome", outcome)
	return approval, nil
}

// Get returns an approval or ErrNotFound
func (s *approvalServiceImpl) Get(ctx context.Context, approvalID string) (*entity.Approval, error) {
	approval, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	if approval == nil {
		return nil, fmt.Errorf("approval %s: %w", approvalID, ErrNotFound)
	}
	return approval, nil
}

func (s *approvalServiceImpl) FindByRecommendation(ctx context.Context, recommendationID string) (*entity.Approval, error) {
	approval, err := s.approvalRepo.GetByRecommendationID(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return approval, nil
}

func validateDecision(input DecisionInput) error {
	if input.RecommendationID == "" {
		return fmt.Errorf("%w: recommendation id is required", ErrInvalidDecision)
	}
	if !input.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidDecision, input.Action)
	}
	if input.Action == entity.ActionModified {
		mc := input.ModifiedContent
		if mc == nil || strings.TrimSpace(mc.Subject) == "" || strings.TrimSpace(mc.Body) == "" {
			return fmt.Errorf("%w: modified decisions need a subject and body", ErrInvalidDecision)
		}
	}
	if input.Action == entity.ActionRejected && (input.ExecuteNow || input.Deferred) {
		return fmt.Errorf("%w: rejected recommendations cannot be executed", ErrInvalidDecision)
	}
	if input.ExecuteNow && input.Deferred {
		return fmt.Errorf("%w: choose either immediate or deferred execution", ErrInvalidDecision)
	}
	return nil
}

func machineFor(state workflow.State, canSend workflow.GuardFunc) (workflow.StateMachine, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidState, state)
	}
	return appworkflow.BuildApprovalStateMachine(state, canSend), nil
}

// stateOf maps a recommendation status onto its workflow state
func stateOf(status entity.RecommendationStatus) workflow.State {
	return workflow.State(strings.ToUpper(string(status)))
}

func statusOf(state workflow.State) entity.RecommendationStatus {
	return entity.RecommendationStatus(strings.ToLower(string(state)))
}
