package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

const userColumns = `id, username, full_name, email, phone, password_hash, referrer, role, active,
	has_paid_joining_fee, has_premium_package, can_bid_on_tasks,
	active_direct_referrals, total_referral_count,
	total_balance, referral_earnings, task_earnings, amount_withdrawn, premium_spent,
	withdrawal_request, withdrawal_amount, withdrawal_request_date,
	premium_upgrade_date, created_at, updated_at`

// UserRepository отвечает за таблицы users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// isUniqueViolation распознаёт нарушение уникального ограничения Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateWithCascade регистрирует пользователя и раздаёт реферальные выплаты
// по цепочке до четырёх уровней. Вся раздача выполняется в одной транзакции:
// либо новый пользователь создан и все достижимые уровни получили деньги,
// либо ничего не произошло.
func (r *UserRepository) CreateWithCascade(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("user repository: begin cascade %w", err)
	}
	defer tx.Rollback()

	// Прямой пригласивший обязан существовать и быть активным.
	type ancestor struct {
		ID       uuid.UUID `db:"id"`
		Referrer string    `db:"referrer"`
	}
	var level1 ancestor
	err = tx.GetContext(ctx, &level1,
		`SELECT id, referrer FROM users WHERE username = $1 AND active FOR UPDATE`, user.Referrer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrInvalidReferrer
		}
		return fmt.Errorf("user repository: resolve referrer %w", err)
	}

	query := `
		INSERT INTO users (username, full_name, email, phone, password_hash, referrer, role,
			active, has_paid_joining_fee, total_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, TRUE, 0)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRowxContext(ctx, query,
		user.Username, user.FullName, user.Email, user.Phone,
		user.PasswordHash, user.Referrer, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrUserAlreadyExists
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	// Уровень 1: выплата плюс счётчики рефералов.
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			total_balance = total_balance + $2,
			referral_earnings = referral_earnings + $2,
			total_referral_count = total_referral_count + 1,
			active_direct_referrals = active_direct_referrals + 1,
			updated_at = NOW()
		WHERE id = $1
	`, level1.ID, models.ReferralPayouts[0])
	if err != nil {
		return fmt.Errorf("user repository: credit level 1 %w", err)
	}

	// Уровни 2-4: только выплата. Обрыв цепочки не ошибка —
	// нижние уровни просто ничего не получают.
	prev := level1
	for level := 1; level < len(models.ReferralPayouts); level++ {
		if prev.Referrer == "" {
			break
		}

		var next ancestor
		err = tx.GetContext(ctx, &next,
			`SELECT id, referrer FROM users WHERE username = $1 AND active FOR UPDATE`, prev.Referrer)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return fmt.Errorf("user repository: resolve level %d %w", level+1, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				total_balance = total_balance + $2,
				referral_earnings = referral_earnings + $2,
				updated_at = NOW()
			WHERE id = $1
		`, next.ID, models.ReferralPayouts[level])
		if err != nil {
			return fmt.Errorf("user repository: credit level %d %w", level+1, err)
		}

		prev = next
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("user repository: commit cascade %w", err)
	}

	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by username %w", err)
	}
	return &user, nil
}

// UpdatePassword сохраняет новый хэш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("user repository: update password %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

// ConfirmJoiningFee отмечает вступительный взнос оплаченным и активирует аккаунт.
// Подтверждение доверенное: интеграции с платёжным шлюзом нет.
func (r *UserRepository) ConfirmJoiningFee(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET has_paid_joining_fee = TRUE, active = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("user repository: confirm joining fee %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

// UpgradePremium списывает стоимость премиум-пакета с баланса и включает пакет.
// Стоимость 150 при оплаченном взносе, иначе 750.
func (r *UserRepository) UpgradePremium(ctx context.Context, id uuid.UUID) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("user repository: begin upgrade %w", err)
	}
	defer tx.Rollback()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: upgrade lock %w", err)
	}

	if user.HasPremiumPackage {
		return nil, apperror.ErrAlreadyPremium
	}

	cost := int64(models.PremiumCostFull)
	if user.HasPaidJoiningFee {
		cost = models.PremiumCostDiscounted
	}
	if user.TotalBalance < cost {
		return nil, apperror.ErrInsufficientBalance
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			total_balance = total_balance - $2,
			premium_spent = premium_spent + $2,
			has_premium_package = TRUE,
			premium_upgrade_date = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, cost, now)
	if err != nil {
		return nil, fmt.Errorf("user repository: upgrade %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("user repository: commit upgrade %w", err)
	}

	user.TotalBalance -= cost
	user.PremiumSpent += cost
	user.HasPremiumPackage = true
	user.PremiumUpgradeDate = &now
	return &user, nil
}

// RequestWithdrawal занимает единственный слот заявки на вывод средств.
func (r *UserRepository) RequestWithdrawal(ctx context.Context, id uuid.UUID, amount int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("user repository: begin withdrawal request %w", err)
	}
	defer tx.Rollback()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("user repository: withdrawal lock %w", err)
	}

	// Порог проверяется по балансу, а не по сумме: 399 на счету
	// блокирует запрос даже на 100.
	if user.TotalBalance < models.MinWithdrawalBalance {
		return apperror.ErrInsufficientBalance
	}
	if amount > user.TotalBalance {
		return apperror.ErrWithdrawalTooLarge
	}
	if user.WithdrawalRequest == models.WithdrawalPending {
		return apperror.ErrWithdrawalPending
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			withdrawal_request = $2,
			withdrawal_amount = $3,
			withdrawal_request_date = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`, id, models.WithdrawalPending, amount)
	if err != nil {
		return fmt.Errorf("user repository: withdrawal request %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("user repository: commit withdrawal request %w", err)
	}
	return nil
}

// SettleWithdrawal закрывает ожидающую заявку на вывод. При одобрении баланс
// перепроверяется в той же транзакции: с момента заявки он мог уменьшиться,
// например из-за покупки премиума.
func (r *UserRepository) SettleWithdrawal(ctx context.Context, id uuid.UUID, approve bool) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("user repository: begin settlement %w", err)
	}
	defer tx.Rollback()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: settlement lock %w", err)
	}

	if user.WithdrawalRequest != models.WithdrawalPending {
		return nil, apperror.ErrNoPendingWithdrawal
	}

	if approve {
		if user.TotalBalance < user.WithdrawalAmount {
			return nil, apperror.ErrInsufficientBalance
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				total_balance = total_balance - withdrawal_amount,
				amount_withdrawn = amount_withdrawn + withdrawal_amount,
				withdrawal_request = $2,
				withdrawal_amount = 0,
				withdrawal_request_date = NULL,
				updated_at = NOW()
			WHERE id = $1
		`, id, models.WithdrawalPaid)
		if err != nil {
			return nil, fmt.Errorf("user repository: settle approve %w", err)
		}
		user.TotalBalance -= user.WithdrawalAmount
		user.AmountWithdrawn += user.WithdrawalAmount
		user.WithdrawalRequest = models.WithdrawalPaid
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				withdrawal_request = $2,
				withdrawal_amount = 0,
				withdrawal_request_date = NULL,
				updated_at = NOW()
			WHERE id = $1
		`, id, models.WithdrawalRejected)
		if err != nil {
			return nil, fmt.Errorf("user repository: settle reject %w", err)
		}
		user.WithdrawalRequest = models.WithdrawalRejected
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("user repository: commit settlement %w", err)
	}

	user.WithdrawalAmount = 0
	user.WithdrawalRequestDate = nil
	return &user, nil
}

// ListPendingWithdrawals возвращает пользователей с ожидающими заявками на вывод.
func (r *UserRepository) ListPendingWithdrawals(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users
		WHERE withdrawal_request = $1
		ORDER BY withdrawal_request_date ASC`
	if err := r.db.SelectContext(ctx, &users, query, models.WithdrawalPending); err != nil {
		return nil, fmt.Errorf("user repository: list pending withdrawals %w", err)
	}
	return users, nil
}

// EnsureAdmin создаёт административный аккаунт, если его ещё нет.
func (r *UserRepository) EnsureAdmin(ctx context.Context, username, email, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, full_name, email, phone, password_hash, referrer, role,
			active, has_paid_joining_fee)
		VALUES ($1, 'Administrator', $2, '', $3, '', $4, TRUE, TRUE)
		ON CONFLICT (username) DO NOTHING
	`, username, email, passwordHash, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("user repository: ensure admin %w", err)
	}
	return nil
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}
