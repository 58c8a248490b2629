package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает участника платформы со всеми балансами и реферальной позицией.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	// Referrer хранит username пригласившего. Неизменяем после регистрации.
	Referrer string `db:"referrer" json:"referrer"`
	Role     string `db:"role" json:"role"`
	Active   bool   `db:"active" json:"active"`

	HasPaidJoiningFee bool `db:"has_paid_joining_fee" json:"has_paid_joining_fee"`
	HasPremiumPackage bool `db:"has_premium_package" json:"has_premium_package"`
	CanBidOnTasks     bool `db:"can_bid_on_tasks" json:"can_bid_on_tasks"`

	// ActiveDirectReferrals увеличивается при каждой прямой регистрации и
	// никогда не уменьшается: фактически это счётчик за всё время.
	ActiveDirectReferrals int `db:"active_direct_referrals" json:"active_direct_referrals"`
	TotalReferralCount    int `db:"total_referral_count" json:"total_referral_count"`

	// Все суммы — целые BOB.
	TotalBalance     int64 `db:"total_balance" json:"total_balance"`
	ReferralEarnings int64 `db:"referral_earnings" json:"referral_earnings"`
	TaskEarnings     int64 `db:"task_earnings" json:"task_earnings"`
	AmountWithdrawn  int64 `db:"amount_withdrawn" json:"amount_withdrawn"`
	// PremiumSpent учитывает списания за премиум, чтобы инвариант
	// total_balance = referral_earnings + task_earnings - amount_withdrawn - premium_spent
	// оставался проверяемым.
	PremiumSpent int64 `db:"premium_spent" json:"premium_spent"`

	WithdrawalRequest     string     `db:"withdrawal_request" json:"withdrawal_request"`
	WithdrawalAmount      int64      `db:"withdrawal_amount" json:"withdrawal_amount"`
	WithdrawalRequestDate *time.Time `db:"withdrawal_request_date" json:"withdrawal_request_date,omitempty"`

	PremiumUpgradeDate *time.Time `db:"premium_upgrade_date" json:"premium_upgrade_date,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
