package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
)

const reviewColumns = `id, employee_id, reviewer_id, review_date, score, status`

// ReviewRepository implements port.ReviewRepository
type ReviewRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReviewRepository creates a new performance review repository
func NewReviewRepository(db *sql.DB, logger *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:     db,
		logger: logger,
	}
}

// InsertPerformanceReview stores a new review
func (r *ReviewRepository) InsertPerformanceReview(ctx context.Context, review *entity.PerformanceReview) error {
	if !review.Status.IsValid() {
		return &entity.InvalidValueError{Field: "status", Value: string(review.Status), Err: entity.ErrInvalidStatus}
	}

	query := `
		INSERT INTO performance_reviews (id, employee_id, reviewer_id, review_date, score, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		review.ID,
		review.EmployeeID,
		review.ReviewerID,
		review.ReviewDate.Format(time.DateOnly),
		review.Score,
		review.Status,
	)
	if err != nil {
		r.logger.Error("Failed to insert performance review", zap.String("id", review.ID), zap.Error(err))
		return fmt.Errorf("failed to insert performance review: %w", err)
	}
	return nil
}

// GetPerformanceReview retrieves a review by ID
func (r *ReviewRepository) GetPerformanceReview(ctx context.Context, reviewID string) (*entity.PerformanceReview, error) {
	review, err := scanReview(r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM performance_reviews WHERE id = ?`, reviewID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get performance review", zap.String("id", reviewID), zap.Error(err))
		return nil, fmt.Errorf("failed to get performance review: %w", err)
	}
	return review, nil
}

// UpdateReviewScore records the score and marks the review Completed
func (r *ReviewRepository) UpdateReviewScore(ctx context.Context, reviewID string, score int) error {
	return r.SubmitReview(ctx, reviewID, score, entity.ReviewStatusCompleted)
}

// CancelReview cancels a Scheduled review
func (r *ReviewRepository) CancelReview(ctx context.Context, reviewID string) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`UPDATE performance_reviews SET status = ? WHERE id = ? AND status = ?`,
		entity.ReviewStatusCancelled, reviewID, entity.ReviewStatusScheduled)
	if err != nil {
		r.logger.Error("Failed to cancel review", zap.String("id", reviewID), zap.Error(err))
		return fmt.Errorf("failed to cancel review: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	review, err := r.GetPerformanceReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return fmt.Errorf("review %s: %w", reviewID, port.ErrNotFound)
	}
	return fmt.Errorf("review %s is %s: %w", reviewID, review.Status, port.ErrStatusConflict)
}

// SubmitReview writes score and status regardless of the current status
func (r *ReviewRepository) SubmitReview(ctx context.Context, reviewID string, score int, status entity.ReviewStatus) error {
	if !status.IsValid() {
		return &entity.InvalidValueError{Field: "status", Value: string(status), Err: entity.ErrInvalidStatus}
	}
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`UPDATE performance_reviews SET score = ?, status = ? WHERE id = ?`, score, status, reviewID)
	if err != nil {
		r.logger.Error("Failed to submit review", zap.String("id", reviewID), zap.Int("score", score), zap.Error(err))
		return fmt.Errorf("failed to submit review: %w", err)
	}
	return requireAffected(result, "review "+reviewID)
}

// ScheduledReviews returns Scheduled reviews, earliest first
func (r *ReviewRepository) ScheduledReviews(ctx context.Context) ([]*entity.PerformanceReview, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM performance_reviews
		WHERE status = ? ORDER BY review_date ASC, id`, entity.ReviewStatusScheduled)
}

// ReviewHistory returns an employee's reviews, latest first
func (r *ReviewRepository) ReviewHistory(ctx context.Context, employeeID int64) ([]*entity.PerformanceReview, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM performance_reviews
		WHERE employee_id = ? ORDER BY review_date DESC, id`, employeeID)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]*entity.PerformanceReview, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list performance reviews", zap.Error(err))
		return nil, fmt.Errorf("failed to list performance reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*entity.PerformanceReview
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

func scanReview(row rowScanner) (*entity.PerformanceReview, error) {
	var review entity.PerformanceReview
	var date string
	if err := row.Scan(&review.ID, &review.EmployeeID, &review.ReviewerID, &date, &review.Score, &review.Status); err != nil {
		return nil, err
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("review %s date: %w", review.ID, err)
	}
	review.ReviewDate = d
	return &review, nil
}

// Verify interface compliance
var _ port.ReviewRepository = (*ReviewRepository)(nil)
