package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/domain/workflow"
	"go.uber.org/zap"
)

const approvalColumns = `
	id, recommendation_id, action, state, modified_content, approved_by, notes,
	approved_at, executed_at, outcome, execution_error, execute_requested, updated_at`

// ApprovalRepository implements port.ApprovalRepository
type ApprovalRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *DB, logger *zap.Logger) *ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an approval. It returns port.ErrApprovalExists when the
// recommendation already has one.
func (r *ApprovalRepository) Create(ctx context.Context, approval *entity.Approval) error {
	modified, err := encodeJSON(approval.ModifiedContent)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO approvals (` + approvalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.getExecutor(ctx).ExecContext(ctx, query,
		approval.ID,
		approval.RecommendationID,
		approval.Action,
		approval.State,
		modified,
		approval.ApprovedBy,
		approval.Notes,
		approval.ApprovedAt,
		nullTime(approval.ExecutedAt),
		approval.Outcome,
		approval.ExecutionError,
		approval.ExecuteRequested,
		approval.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("recommendation %s: %w", approval.RecommendationID, port.ErrApprovalExists)
		}
		r.logger.Error("Failed to create approval",
			zap.String("id", approval.ID),
			zap.String("recommendation_id", approval.RecommendationID),
			zap.Error(err))
		return fmt.Errorf("failed to create approval: %w", err)
	}

	return nil
}

// GetByID retrieves an approval by ID, or nil when it does not exist
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE id = ?`

	approval, err := scanApproval(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return approval, nil
}

// GetByRecommendationID retrieves the approval for a recommendation, or nil
func (r *ApprovalRepository) GetByRecommendationID(ctx context.Context, recommendationID string) (*entity.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE recommendation_id = ?`

	approval, err := scanApproval(r.db.getExecutor(ctx).QueryRowContext(ctx, query, recommendationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval by recommendation",
			zap.String("recommendation_id", recommendationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return approval, nil
}

// Update persists the mutable workflow fields of an approval whose stored state is fromState
func (r *ApprovalRepository) Update(ctx context.Context, approval *entity.Approval, fromState string) error {
	query := `
		UPDATE approvals
		SET state = ?, executed_at = ?, outcome = ?, execution_error = ?,
			execute_requested = ?, updated_at = ?
		WHERE id = ? AND state = ?
	`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		approval.State,
		nullTime(approval.ExecutedAt),
		approval.Outcome,
		approval.ExecutionError,
		approval.ExecuteRequested,
		approval.UpdatedAt,
		approval.ID,
		fromState,
	)
	if err != nil {
		r.logger.Error("Failed to update approval", zap.String("id", approval.ID), zap.Error(err))
		return fmt.Errorf("failed to update approval: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.staleUpdate(ctx, approval.ID, fromState)
	}
	return nil
}

// staleUpdate explains why a conditional update matched no row
func (r *ApprovalRepository) staleUpdate(ctx context.Context, id, fromState string) error {
	var current string
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, `SELECT state FROM approvals WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("approval %s: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return fmt.Errorf("failed to read approval state: %w", err)
	}

	r.logger.Warn("Approval changed concurrently",
		zap.String("id", id),
		zap.String("expected_state", fromState),
		zap.String("state", current))
	return fmt.Errorf("%w: approval %s is %s, expected %s", workflow.ErrInvalidTransition, id, current, fromState)
}

// ListExecutionRequested returns approved or modified approvals awaiting deferred execution, oldest first
func (r *ApprovalRepository) ListExecutionRequested(ctx context.Context, limit int) ([]*entity.Approval, error) {
	query := `
		SELECT ` + approvalColumns + `
		FROM approvals
		WHERE execute_requested = 1 AND state IN (?, ?)
		ORDER BY approved_at, id
		LIMIT ?
	`

	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, entity.StateApproved, entity.StateModified, limit)
	if err != nil {
		r.logger.Error("Failed to list approvals awaiting execution", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*entity.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, approval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approvals: %w", err)
	}

	return approvals, nil
}

func scanApproval(row rowScanner) (*entity.Approval, error) {
	var (
		approval   entity.Approval
		modified   sql.NullString
		executedAt sql.NullTime
	)

	err := row.Scan(
		&approval.ID,
		&approval.RecommendationID,
		&approval.Action,
		&approval.State,
		&modified,
		&approval.ApprovedBy,
		&approval.Notes,
		&approval.ApprovedAt,
		&executedAt,
		&approval.Outcome,
		&approval.ExecutionError,
		&approval.ExecuteRequested,
		&approval.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if modified.Valid {
		approval.ModifiedContent = &entity.DraftEmail{}
		if err := decodeJSON(modified, approval.ModifiedContent); err != nil {
			return nil, err
		}
	}
	if executedAt.Valid {
		approval.ExecutedAt = &executedAt.Time
	}

	return &approval, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
