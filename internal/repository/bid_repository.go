package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

const bidColumns = `id, user_id, username, task_type, payout_amount, sample_text, status,
	expires_at, created_at, updated_at`

// BidRepository отвечает за таблицу bids.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository создаёт экземпляр репозитория.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create сохраняет новую заявку в статусе pending.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (user_id, username, task_type, payout_amount, sample_text, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		bid.UserID, bid.Username, bid.TaskType, bid.PayoutAmount,
		bid.SampleText, models.BidStatusPending, bid.ExpiresAt,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt); err != nil {
		return fmt.Errorf("bid repository: create %w", err)
	}
	bid.Status = models.BidStatusPending
	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if err := r.db.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get by id %w", err)
	}
	return &bid, nil
}

// ListByUser возвращает заявки пользователя, новые первыми.
func (r *BidRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, userID); err != nil {
		return nil, fmt.Errorf("bid repository: list by user %w", err)
	}
	return bids, nil
}

// ListByStatus возвращает заявки в указанном статусе; пустой статус — все.
func (r *BidRepository) ListByStatus(ctx context.Context, status string) ([]models.Bid, error) {
	var bids []models.Bid
	if status == "" {
		query := `SELECT ` + bidColumns + ` FROM bids ORDER BY created_at DESC`
		if err := r.db.SelectContext(ctx, &bids, query); err != nil {
			return nil, fmt.Errorf("bid repository: list %w", err)
		}
		return bids, nil
	}
	query := `SELECT ` + bidColumns + ` FROM bids WHERE status = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, status); err != nil {
		return nil, fmt.Errorf("bid repository: list by status %w", err)
	}
	return bids, nil
}

// CountRecentByUser считает заявки пользователя, созданные после указанного
// момента. Окно скользящее, а не календарное.
func (r *BidRepository) CountRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bids WHERE user_id = $1 AND created_at >= $2`
	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("bid repository: count recent %w", err)
	}
	return count, nil
}

// Approve переводит pending-заявку в approved и взводит пользователю флаг
// can_bid_on_tasks. Флаг — одноразовая защёлка, назад не сбрасывается.
func (r *BidRepository) Approve(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bid repository: begin approve %w", err)
	}
	defer tx.Rollback()

	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: approve lock %w", err)
	}

	if bid.Status != models.BidStatusPending {
		return nil, apperror.ErrBidNotPending
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, models.BidStatusApproved); err != nil {
		return nil, fmt.Errorf("bid repository: approve %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET can_bid_on_tasks = TRUE, updated_at = NOW()
		 WHERE id = $1 AND NOT can_bid_on_tasks`, bid.UserID); err != nil {
		return nil, fmt.Errorf("bid repository: approve latch %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid repository: commit approve %w", err)
	}

	bid.Status = models.BidStatusApproved
	return &bid, nil
}

// Reject переводит pending-заявку в rejected.
func (r *BidRepository) Reject(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bid repository: begin reject %w", err)
	}
	defer tx.Rollback()

	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: reject lock %w", err)
	}

	if bid.Status != models.BidStatusPending {
		return nil, apperror.ErrBidNotPending
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, models.BidStatusRejected); err != nil {
		return nil, fmt.Errorf("bid repository: reject %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid repository: commit reject %w", err)
	}

	bid.Status = models.BidStatusRejected
	return &bid, nil
}

// ExpireStale помечает просроченные pending-заявки как expired и возвращает
// число затронутых строк.
func (r *BidRepository) ExpireStale(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bids SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < NOW()
	`, models.BidStatusExpired, models.BidStatusPending)
	if err != nil {
		return 0, fmt.Errorf("bid repository: expire stale %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bid repository: expire stale rows affected %w", err)
	}
	return n, nil
}
