package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/domain/workflow"
	"github.com/stretchr/testify/mock"
)

// memRecommendationRepo is an in-memory port.RecommendationRepository
type memRecommendationRepo struct {
	mu        sync.Mutex
	recs      map[string]*entity.CollectionRecommendation
	createErr error
}

func newMemRecommendationRepo(recs ...*entity.CollectionRecommendation) *memRecommendationRepo {
	r := &memRecommendationRepo{recs: make(map[string]*entity.CollectionRecommendation)}
	for _, rec := range recs {
		r.recs[rec.ID] = rec
	}
	return r
}

func (r *memRecommendationRepo) Create(ctx context.Context, rec *entity.CollectionRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.recs {
		if existing.InvoiceID == rec.InvoiceID && existing.Status == entity.RecommendationPending {
			return port.ErrPendingExists
		}
	}
	copied := *rec
	r.recs[rec.ID] = &copied
	return nil
}

func (r *memRecommendationRepo) GetByID(ctx context.Context, id string) (*entity.CollectionRecommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *memRecommendationRepo) GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*entity.CollectionRecommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.InvoiceID == invoiceID && rec.Status == entity.RecommendationPending {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memRecommendationRepo) UpdateStatus(ctx context.Context, id string, status entity.RecommendationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return errors.New("no rows")
	}
	rec.Status = status
	return nil
}

func (r *memRecommendationRepo) List(ctx context.Context, filter port.RecommendationFilter) ([]*entity.CollectionRecommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CollectionRecommendation
	for _, rec := range r.recs {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRecommendationRepo) status(id string) entity.RecommendationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recs[id].Status
}

// memApprovalRepo is an in-memory port.ApprovalRepository
type memApprovalRepo struct {
	mu        sync.Mutex
	approvals map[string]*entity.Approval
	updateErr error
	// afterGet runs after every GetByID read, outside the mutex
	afterGet func(id string)
}

func newMemApprovalRepo(approvals ...*entity.Approval) *memApprovalRepo {
	r := &memApprovalRepo{approvals: make(map[string]*entity.Approval)}
	for _, a := range approvals {
		r.approvals[a.ID] = a
	}
	return r
}

func (r *memApprovalRepo) Create(ctx context.Context, approval *entity.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.approvals {
		if existing.RecommendationID == approval.RecommendationID {
			return port.ErrApprovalExists
		}
	}
	copied := *approval
	r.approvals[approval.ID] = &copied
	return nil
}

func (r *memApprovalRepo) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	r.mu.Lock()
	a, ok := r.approvals[id]
	var copied entity.Approval
	if ok {
		copied = *a
	}
	hook := r.afterGet
	r.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if !ok {
		return nil, nil
	}
	return &copied, nil
}

func (r *memApprovalRepo) GetByRecommendationID(ctx context.Context, recommendationID string) (*entity.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvals {
		if a.RecommendationID == recommendationID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memApprovalRepo) Update(ctx context.Context, approval *entity.Approval, fromState string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.approvals[approval.ID]
	if !ok {
		return errors.New("no rows")
	}
	if existing.State != fromState {
		return fmt.Errorf("%w: approval %s is %s", workflow.ErrInvalidTransition, approval.ID, existing.State)
	}
	copied := *approval
	r.approvals[approval.ID] = &copied
	return nil
}

func (r *memApprovalRepo) ListExecutionRequested(ctx context.Context, limit int) ([]*entity.Approval, error) {
	return nil, nil
}

func (r *memApprovalRepo) stored(id string) *entity.Approval {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.approvals[id]
}

// passthroughTx runs fn without a real transaction
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubLocker reports a held lock for the configured keys
type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired []string
	err      error
}

func (l *stubLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, port.ErrLockHeld
	}
	l.acquired = append(l.acquired, key)
	return func() {}, nil
}

// mockExecutor is a testify mock for port.CollectionExecutor
type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, req port.ExecutionRequest) (*port.ExecutionResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*port.ExecutionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubActivityLogger records calls and returns err, optionally blocking until its context ends
type stubActivityLogger struct {
	name  string
	err   error
	block bool

	mu    sync.Mutex
	calls []port.Activity
}

func (l *stubActivityLogger) Name() string { return l.name }

func (l *stubActivityLogger) LogActivity(ctx context.Context, activity port.Activity) error {
	l.mu.Lock()
	l.calls = append(l.calls, activity)
	l.mu.Unlock()
	if l.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return l.err
}

func (l *stubActivityLogger) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// recordingMetrics counts observations
type recordingMetrics struct {
	mu              sync.Mutex
	recommendations int
	failures        int
	decisions       []entity.ApprovalAction
	executions      []entity.Outcome
	activity        map[string]bool
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{activity: make(map[string]bool)}
}

func (m *recordingMetrics) ObserveRecommendation(entity.ModelTier, bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations++
}

func (m *recordingMetrics) ObserveGenerationFailure(entity.ModelTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *recordingMetrics) ObserveDecision(action entity.ApprovalAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, action)
}

func (m *recordingMetrics) ObserveExecution(outcome entity.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions = append(m.executions, outcome)
}

func (m *recordingMetrics) ObserveActivityLog(system string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity[system] = ok
}

// nopLogger satisfies Logger
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
