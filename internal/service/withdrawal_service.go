package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/logger"
	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

// WithdrawalUserRepository — доступ WithdrawalService к пользователям.
type WithdrawalUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RequestWithdrawal(ctx context.Context, id uuid.UUID, amount int64) error
	SettleWithdrawal(ctx context.Context, id uuid.UUID, approve bool) (*models.User, error)
	ListPendingWithdrawals(ctx context.Context) ([]models.User, error)
}

// WithdrawalService управляет заявками на вывод средств.
type WithdrawalService struct {
	users    WithdrawalUserRepository
	notifier Notifier
}

// NewWithdrawalService создаёт сервис выводов.
func NewWithdrawalService(users WithdrawalUserRepository, notifier Notifier) *WithdrawalService {
	return &WithdrawalService{users: users, notifier: notifier}
}

// Request открывает заявку на вывод. Проверки порога и баланса выполняются
// в репозитории в одной транзакции с установкой pending-слота.
func (s *WithdrawalService) Request(ctx context.Context, userID uuid.UUID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма вывода должна быть положительной")
	}

	if err := s.users.RequestWithdrawal(ctx, userID, amount); err != nil {
		return nil, err
	}

	return s.users.GetByID(ctx, userID)
}

// ListPending возвращает пользователей с открытыми заявками на вывод.
func (s *WithdrawalService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.users.ListPendingWithdrawals(ctx)
}

// Settle закрывает pending-заявку решением админа. Одобрение списывает
// сумму с баланса, отказ просто освобождает слот.
func (s *WithdrawalService) Settle(ctx context.Context, userID uuid.UUID, action string) (*models.User, error) {
	var approve bool
	switch action {
	case models.ReviewActionApprove:
		approve = true
	case models.ReviewActionReject:
		approve = false
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "действие должно быть approve или reject")
	}

	user, err := s.users.SettleWithdrawal(ctx, userID, approve)
	if err != nil {
		return nil, err
	}

	s.notify(user.ID, "withdrawal_settled", map[string]any{
		"status":  user.WithdrawalRequest,
		"balance": user.TotalBalance,
	})

	return user, nil
}

func (s *WithdrawalService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("withdrawal service: не удалось отправить уведомление")
	}
}
