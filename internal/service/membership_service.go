package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/models"
)

// MembershipUserRepository — доступ MembershipService к пользователям.
type MembershipUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ConfirmJoiningFee(ctx context.Context, id uuid.UUID) error
	UpgradePremium(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// MembershipService управляет вступительным взносом и премиум-пакетом.
type MembershipService struct {
	users MembershipUserRepository
}

// NewMembershipService создаёт сервис членства.
func NewMembershipService(users MembershipUserRepository) *MembershipService {
	return &MembershipService{users: users}
}

// ConfirmJoiningFee подтверждает оплату вступительного взноса.
// Операция идемпотентна: повторное подтверждение ничего не меняет.
func (s *MembershipService) ConfirmJoiningFee(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if err := s.users.ConfirmJoiningFee(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// UpgradePremium покупает премиум-пакет за счёт баланса. Цена зависит от
// того, оплачен ли вступительный взнос; обе проверки выполняются
// в репозитории под блокировкой строки.
func (s *MembershipService) UpgradePremium(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.UpgradePremium(ctx, userID)
}
