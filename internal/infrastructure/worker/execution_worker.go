package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/application/service"
	"go.uber.org/zap"
)

// ExecutionWorkerConfig holds configuration for the deferred execution worker
type ExecutionWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultExecutionWorkerConfig returns default configuration
func DefaultExecutionWorkerConfig() ExecutionWorkerConfig {
	return ExecutionWorkerConfig{
		PollInterval: time.Minute,
		BatchSize:    20,
	}
}

// ApprovalExecutor runs one execution attempt for an approval
type ApprovalExecutor interface {
	Execute(ctx context.Context, approvalID string) (*service.ExecutionResult, error)
}

// ExecutionWorker drains approvals queued for deferred execution
type ExecutionWorker struct {
	config       ExecutionWorkerConfig
	approvalRepo port.ApprovalRepository
	executor     ApprovalExecutor
	logger       *zap.Logger

	mu             sync.Mutex
	cancel         context.CancelFunc
	done           chan struct{}
	isRunning      bool
	processedCount int
	failedCount    int
}

// NewExecutionWorker creates a new execution worker
func NewExecutionWorker(
	config ExecutionWorkerConfig,
	approvalRepo port.ApprovalRepository,
	executor ApprovalExecutor,
	logger *zap.Logger,
) *ExecutionWorker {
	defaults := DefaultExecutionWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &ExecutionWorker{
		config:       config,
		approvalRepo: approvalRepo,
		executor:     executor,
		logger:       logger,
	}
}

// Start begins the polling loop
func (w *ExecutionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("execution worker already running")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("ExecutionWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop(ctx, w.done)
	return nil
}

// Stop cancels the loop and waits for the current batch to finish
func (w *ExecutionWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	processed, failed := w.Stats()
	w.logger.Info("ExecutionWorker stopped",
		zap.Int("processed_count", processed),
		zap.Int("failed_count", failed))
	return nil
}

// Name returns the worker name for identification
func (w *ExecutionWorker) Name() string {
	return "ExecutionWorker"
}

// Stats returns the totals since the worker was created
func (w *ExecutionWorker) Stats() (processed, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processedCount, w.failedCount
}

func (w *ExecutionWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("Failed to run execution batch", zap.Error(err))
			}
		}
	}
}

// RunOnce executes one batch of queued approvals. Failed sends are counted, not
// returned; the error is reserved for failures to read the queue.
func (w *ExecutionWorker) RunOnce(ctx context.Context) (processed, failed int, err error) {
	approvals, err := w.approvalRepo.ListExecutionRequested(ctx, w.config.BatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list queued approvals: %w", err)
	}
	if len(approvals) == 0 {
		return 0, 0, nil
	}

	w.logger.Info("Executing queued approvals", zap.Int("count", len(approvals)))

	for _, approval := range approvals {
		if ctx.Err() != nil {
			break
		}

		result, execErr := w.executor.Execute(ctx, approval.ID)
		processed++
		switch {
		case execErr != nil:
			failed++
			w.logger.Warn("Queued approval not executed",
				zap.String("approval_id", approval.ID),
				zap.Error(execErr))
		case !result.Success:
			failed++
			w.logger.Warn("Queued approval send failed",
				zap.String("approval_id", approval.ID),
				zap.String("error", result.Error))
		default:
			w.logger.Info("Queued approval executed",
				zap.String("approval_id", approval.ID),
				zap.String("message_id", result.MessageID),
				zap.Strings("activity_warnings", result.ActivityWarnings))
		}
	}

	w.mu.Lock()
	w.processedCount += processed
	w.failedCount += failed
	w.mu.Unlock()

	return processed, failed, nil
}
