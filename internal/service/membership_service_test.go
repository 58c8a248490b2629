package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

type mockMembershipUserRepo struct {
	mock.Mock
}

func (m *mockMembershipUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockMembershipUserRepo) ConfirmJoiningFee(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMembershipUserRepo) UpgradePremium(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestMembershipService_ConfirmJoiningFee(t *testing.T) {
	users := new(mockMembershipUserRepo)
	service := NewMembershipService(users)

	userID := uuid.New()
	users.On("ConfirmJoiningFee", mock.Anything, userID).Return(nil)
	users.On("GetByID", mock.Anything, userID).Return(&models.User{
		ID:                userID,
		HasPaidJoiningFee: true,
	}, nil)

	user, err := service.ConfirmJoiningFee(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, user.HasPaidJoiningFee)
}

func TestMembershipService_UpgradePremium(t *testing.T) {
	users := new(mockMembershipUserRepo)
	service := NewMembershipService(users)

	userID := uuid.New()
	users.On("UpgradePremium", mock.Anything, userID).Return(&models.User{
		ID:                userID,
		HasPremiumPackage: true,
		PremiumSpent:      models.PremiumCostDiscounted,
	}, nil)

	user, err := service.UpgradePremium(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, user.HasPremiumPackage)
	assert.Equal(t, int64(models.PremiumCostDiscounted), user.PremiumSpent)
}

func TestMembershipService_UpgradePremium_Errors(t *testing.T) {
	users := new(mockMembershipUserRepo)
	service := NewMembershipService(users)

	userID := uuid.New()
	users.On("UpgradePremium", mock.Anything, userID).Return(nil, apperror.ErrAlreadyPremium)

	_, err := service.UpgradePremium(context.Background(), userID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyPremium)
}
