package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DashboardResponse объединяет профиль со сводной статистикой.
type DashboardResponse struct {
	User  *models.User      `json:"user"`
	Stats *models.UserStats `json:"stats"`
}

// WithdrawalQueueItem — строка очереди выводов для админа.
type WithdrawalQueueItem struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Amount      int64      `json:"amount"`
	Balance     int64      `json:"balance"`
	RequestedAt *time.Time `json:"requested_at"`
}

// NewWithdrawalQueueItem собирает строку очереди из пользователя с pending-заявкой.
func NewWithdrawalQueueItem(u *models.User) WithdrawalQueueItem {
	return WithdrawalQueueItem{
		UserID:      u.ID,
		Username:    u.Username,
		Amount:      u.WithdrawalAmount,
		Balance:     u.TotalBalance,
		RequestedAt: u.WithdrawalRequestDate,
	}
}
