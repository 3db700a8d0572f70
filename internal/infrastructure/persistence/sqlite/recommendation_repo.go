package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const recommendationColumns = `
	id, customer_id, customer_external_id, customer_email, invoice_id, invoice_number,
	model_tier, model_used, intended_model, fallback_used,
	confidence, recommended_action, tone, timing, draft_email, reasoning, alternatives,
	revenue_at_risk, relationship_risk, churn_probability,
	approval_required, review_level, escalation_triggers, status, created_at`

// RecommendationRepository implements port.RecommendationRepository
type RecommendationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *DB, logger *zap.Logger) *RecommendationRepository {
	return &RecommendationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a recommendation. It returns port.ErrPendingExists when the
// invoice already has a pending recommendation.
func (r *RecommendationRepository) Create(ctx context.Context, rec *entity.CollectionRecommendation) error {
	draft, err := encodeJSON(rec.DraftEmail)
	if err != nil {
		return err
	}
	alternatives := rec.Alternatives
	if alternatives == nil {
		alternatives = []entity.Alternative{}
	}
	altJSON, err := encodeJSON(alternatives)
	if err != nil {
		return err
	}
	triggers := rec.EscalationTriggers
	if triggers == nil {
		triggers = []string{}
	}
	triggersJSON, err := encodeJSON(triggers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recommendations (` + recommendationColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.getExecutor(ctx).ExecContext(ctx, query,
		rec.ID,
		rec.CustomerID,
		rec.CustomerExternalID,
		rec.CustomerEmail,
		rec.InvoiceID,
		rec.InvoiceNumber,
		rec.ModelTier,
		rec.ModelUsed,
		rec.IntendedModel,
		rec.FallbackUsed,
		rec.Confidence,
		rec.RecommendedAction,
		rec.Tone,
		rec.Timing,
		draft,
		rec.Reasoning,
		altJSON,
		rec.BusinessImpact.RevenueAtRisk,
		rec.BusinessImpact.RelationshipRisk,
		rec.BusinessImpact.ChurnProbability,
		rec.ApprovalRequired,
		rec.ReviewLevel,
		triggersJSON,
		rec.Status,
		rec.CreatedAt,
		rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice %s: %w", rec.InvoiceID, port.ErrPendingExists)
		}
		r.logger.Error("Failed to create recommendation", zap.String("id", rec.ID), zap.Error(err))
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

// GetByID retrieves a recommendation by ID, or nil when it does not exist
func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*entity.CollectionRecommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = ?`

	rec, err := scanRecommendation(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get recommendation", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return rec, nil
}

// GetPendingByInvoiceID returns the pending recommendation for an invoice, or nil
func (r *RecommendationRepository) GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*entity.CollectionRecommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE invoice_id = ? AND status = ?`

	rec, err := scanRecommendation(r.db.getExecutor(ctx).QueryRowContext(ctx, query, invoiceID, entity.RecommendationPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pending recommendation", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get pending recommendation: %w", err)
	}
	return rec, nil
}

// UpdateStatus sets the workflow status of a recommendation
func (r *RecommendationRepository) UpdateStatus(ctx context.Context, id string, status entity.RecommendationStatus) error {
	query := `UPDATE recommendations SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update recommendation status",
			zap.String("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update recommendation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("recommendation %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// List returns recommendations newest first
func (r *RecommendationRepository) List(ctx context.Context, filter port.RecommendationFilter) ([]*entity.CollectionRecommendation, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}

	query := `SELECT ` + recommendationColumns + ` FROM recommendations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list recommendations", zap.Error(err))
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*entity.CollectionRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*entity.CollectionRecommendation, error) {
	var (
		rec          entity.CollectionRecommendation
		draft        sql.NullString
		alternatives sql.NullString
		triggers     sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.CustomerID,
		&rec.CustomerExternalID,
		&rec.CustomerEmail,
		&rec.InvoiceID,
		&rec.InvoiceNumber,
		&rec.ModelTier,
		&rec.ModelUsed,
		&rec.IntendedModel,
		&rec.FallbackUsed,
		&rec.Confidence,
		&rec.RecommendedAction,
		&rec.Tone,
		&rec.Timing,
		&draft,
		&rec.Reasoning,
		&alternatives,
		&rec.BusinessImpact.RevenueAtRisk,
		&rec.BusinessImpact.RelationshipRisk,
		&rec.BusinessImpact.ChurnProbability,
		&rec.ApprovalRequired,
		&rec.ReviewLevel,
		&triggers,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if draft.Valid {
		rec.DraftEmail = &entity.DraftEmail{}
		if err := decodeJSON(draft, rec.DraftEmail); err != nil {
			return nil, err
		}
	}
	rec.Alternatives = []entity.Alternative{}
	if err := decodeJSON(alternatives, &rec.Alternatives); err != nil {
		return nil, err
	}
	rec.EscalationTriggers = []string{}
	if err := decodeJSON(triggers, &rec.EscalationTriggers); err != nil {
		return nil, err
	}

	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var _ port.RecommendationRepository = (*RecommendationRepository)(nil)
