package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techgeo/backend/internal/models"
)

// StatsRepository строит read-only сводки по леджеру.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository создаёт экземпляр репозитория.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetPlatformProfits агрегирует балансы и выплаты по всей платформе.
// COALESCE даёт нули на пустой базе.
func (r *StatsRepository) GetPlatformProfits(ctx context.Context) (*models.PlatformProfits, error) {
	var profits models.PlatformProfits

	userQuery := `
		SELECT
			COALESCE(SUM(amount_withdrawn), 0)                         AS total_withdrawn,
			COALESCE(SUM(total_balance), 0)                            AS total_balance_in_system,
			COALESCE(SUM(referral_earnings), 0)                        AS total_referral_earnings,
			COALESCE(SUM(task_earnings), 0)                            AS total_task_earnings,
			COUNT(*) FILTER (WHERE active)                             AS active_users,
			COUNT(*) FILTER (WHERE has_premium_package)                AS premium_users,
			COUNT(*)                                                   AS total_users
		FROM users
	`
	row := struct {
		TotalWithdrawn        int64 `db:"total_withdrawn"`
		TotalBalanceInSystem  int64 `db:"total_balance_in_system"`
		TotalReferralEarnings int64 `db:"total_referral_earnings"`
		TotalTaskEarnings     int64 `db:"total_task_earnings"`
		ActiveUsers           int   `db:"active_users"`
		PremiumUsers          int   `db:"premium_users"`
		TotalUsers            int   `db:"total_users"`
	}{}
	if err := r.db.GetContext(ctx, &row, userQuery); err != nil {
		return nil, fmt.Errorf("stats repository: user totals %w", err)
	}

	submissionQuery := `
		SELECT
			COALESCE(SUM(payment_amount), 0) AS total_paid,
			COUNT(*)                         AS approved_count
		FROM submissions
		WHERE status = $1
	`
	subRow := struct {
		TotalPaid     int64 `db:"total_paid"`
		ApprovedCount int   `db:"approved_count"`
	}{}
	if err := r.db.GetContext(ctx, &subRow, submissionQuery, models.SubmissionStatusApproved); err != nil {
		return nil, fmt.Errorf("stats repository: submission totals %w", err)
	}

	profits.TotalWithdrawn = row.TotalWithdrawn
	profits.TotalBalanceInSystem = row.TotalBalanceInSystem
	profits.TotalReferralEarnings = row.TotalReferralEarnings
	profits.TotalTaskEarnings = row.TotalTaskEarnings
	profits.TotalDistributed = row.TotalWithdrawn + row.TotalBalanceInSystem
	profits.NetBalance = (row.TotalReferralEarnings + row.TotalTaskEarnings) - profits.TotalDistributed
	profits.ActiveUsers = row.ActiveUsers
	profits.PremiumUsers = row.PremiumUsers
	profits.TotalUsers = row.TotalUsers
	profits.TotalPaidFromSubmissions = subRow.TotalPaid
	profits.ApprovedSubmissions = subRow.ApprovedCount

	return &profits, nil
}

// GetUserStats возвращает сводку по одному пользователю.
func (r *StatsRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats

	bidQuery := `
		SELECT
			COUNT(*)                                    AS total_bids,
			COUNT(*) FILTER (WHERE status = $2)         AS approved_bids
		FROM bids WHERE user_id = $1
	`
	bidRow := struct {
		TotalBids    int `db:"total_bids"`
		ApprovedBids int `db:"approved_bids"`
	}{}
	if err := r.db.GetContext(ctx, &bidRow, bidQuery, userID, models.BidStatusApproved); err != nil {
		return nil, fmt.Errorf("stats repository: bid totals %w", err)
	}

	subQuery := `
		SELECT
			COUNT(*)                            AS total_submissions,
			COUNT(*) FILTER (WHERE status = $2) AS approved_submissions
		FROM submissions WHERE user_id = $1
	`
	subRow := struct {
		TotalSubmissions    int `db:"total_submissions"`
		ApprovedSubmissions int `db:"approved_submissions"`
	}{}
	if err := r.db.GetContext(ctx, &subRow, subQuery, userID, models.SubmissionStatusApproved); err != nil {
		return nil, fmt.Errorf("stats repository: submission totals %w", err)
	}

	earnQuery := `SELECT task_earnings, referral_earnings FROM users WHERE id = $1`
	earnRow := struct {
		TaskEarnings     int64 `db:"task_earnings"`
		ReferralEarnings int64 `db:"referral_earnings"`
	}{}
	if err := r.db.GetContext(ctx, &earnRow, earnQuery, userID); err != nil {
		return nil, fmt.Errorf("stats repository: earnings %w", err)
	}

	stats.TotalBids = bidRow.TotalBids
	stats.ApprovedBids = bidRow.ApprovedBids
	stats.TotalSubmissions = subRow.TotalSubmissions
	stats.ApprovedSubmissions = subRow.ApprovedSubmissions
	stats.TaskEarnings = earnRow.TaskEarnings
	stats.ReferralEarnings = earnRow.ReferralEarnings

	return &stats, nil
}
