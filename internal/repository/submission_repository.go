package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

const submissionColumns = `id, bid_id, user_id, username, task_type, content, payment_amount,
	status, admin_notes, created_at, updated_at`

// SubmissionRepository отвечает за таблицу submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository создаёт экземпляр репозитория.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create сохраняет работу. Уникальный индекс по bid_id гарантирует не больше
// одной работы на заявку даже при гонке конкурентных запросов.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (bid_id, user_id, username, task_type, content, payment_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		submission.BidID, submission.UserID, submission.Username,
		submission.TaskType, submission.Content, submission.PaymentAmount,
		models.SubmissionStatusSubmitted,
	).Scan(&submission.ID, &submission.CreatedAt, &submission.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrSubmissionAlreadyExists
		}
		return fmt.Errorf("submission repository: create %w", err)
	}
	submission.Status = models.SubmissionStatusSubmitted
	return nil
}

// GetByID возвращает работу по идентификатору.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: get by id %w", err)
	}
	return &submission, nil
}

// ExistsForBid сообщает, есть ли уже работа по заявке.
func (r *SubmissionRepository) ExistsForBid(ctx context.Context, bidID uuid.UUID) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM submissions WHERE bid_id = $1`, bidID); err != nil {
		return false, fmt.Errorf("submission repository: exists for bid %w", err)
	}
	return count > 0, nil
}

// ListByUser возвращает работы пользователя, новые первыми.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	var submissions []models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &submissions, query, userID); err != nil {
		return nil, fmt.Errorf("submission repository: list by user %w", err)
	}
	return submissions, nil
}

// ListByStatus возвращает работы в указанном статусе; пустой статус — все.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status string) ([]models.Submission, error) {
	var submissions []models.Submission
	if status == "" {
		query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC`
		if err := r.db.SelectContext(ctx, &submissions, query); err != nil {
			return nil, fmt.Errorf("submission repository: list %w", err)
		}
		return submissions, nil
	}
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE status = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &submissions, query, status); err != nil {
		return nil, fmt.Errorf("submission repository: list by status %w", err)
	}
	return submissions, nil
}

// StartReview переводит работу из submitted в under_review.
func (r *SubmissionRepository) StartReview(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	query := `
		UPDATE submissions SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING ` + submissionColumns
	err := r.db.GetContext(ctx, &submission, query,
		id, models.SubmissionStatusUnderReview, models.SubmissionStatusSubmitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо работы нет, либо она уже не в submitted.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperror.ErrSubmissionReviewed
		}
		return nil, fmt.Errorf("submission repository: start review %w", err)
	}
	return &submission, nil
}

// reviewable сообщает, можно ли ещё принять решение по работе.
func reviewable(status string) bool {
	return status == models.SubmissionStatusSubmitted || status == models.SubmissionStatusUnderReview
}

// Approve одобряет работу и в той же транзакции зачисляет замороженную
// при создании сумму на баланс автора. Повторное одобрение невозможно:
// терминальный статус отсекается до каких-либо денежных изменений.
func (r *SubmissionRepository) Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*models.Submission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("submission repository: begin approve %w", err)
	}
	defer tx.Rollback()

	var submission models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: approve lock %w", err)
	}

	if !reviewable(submission.Status) {
		return nil, apperror.ErrSubmissionReviewed
	}

	if adminNotes == "" {
		adminNotes = "Approved"
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE submissions SET status = $2, admin_notes = $3, updated_at = NOW() WHERE id = $1`,
		id, models.SubmissionStatusApproved, adminNotes); err != nil {
		return nil, fmt.Errorf("submission repository: approve %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET
			total_balance = total_balance + $2,
			task_earnings = task_earnings + $2,
			updated_at = NOW()
		WHERE id = $1
	`, submission.UserID, submission.PaymentAmount); err != nil {
		return nil, fmt.Errorf("submission repository: approve credit %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("submission repository: commit approve %w", err)
	}

	submission.Status = models.SubmissionStatusApproved
	submission.AdminNotes = &adminNotes
	return &submission, nil
}

// Reject отклоняет работу без денежных изменений.
func (r *SubmissionRepository) Reject(ctx context.Context, id uuid.UUID, adminNotes string) (*models.Submission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("submission repository: begin reject %w", err)
	}
	defer tx.Rollback()

	var submission models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: reject lock %w", err)
	}

	if !reviewable(submission.Status) {
		return nil, apperror.ErrSubmissionReviewed
	}

	if adminNotes == "" {
		adminNotes = "Rejected"
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE submissions SET status = $2, admin_notes = $3, updated_at = NOW() WHERE id = $1`,
		id, models.SubmissionStatusRejected, adminNotes); err != nil {
		return nil, fmt.Errorf("submission repository: reject %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("submission repository: commit reject %w", err)
	}

	submission.Status = models.SubmissionStatusRejected
	submission.AdminNotes = &adminNotes
	return &submission, nil
}
