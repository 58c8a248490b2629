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

type mockWithdrawalUserRepo struct {
	mock.Mock
}

func (m *mockWithdrawalUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockWithdrawalUserRepo) RequestWithdrawal(ctx context.Context, id uuid.UUID, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *mockWithdrawalUserRepo) SettleWithdrawal(ctx context.Context, id uuid.UUID, approve bool) (*models.User, error) {
	args := m.Called(ctx, id, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockWithdrawalUserRepo) ListPendingWithdrawals(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func TestWithdrawalService_Request(t *testing.T) {
	users := new(mockWithdrawalUserRepo)
	service := NewWithdrawalService(users, nil)

	userID := uuid.New()
	users.On("RequestWithdrawal", mock.Anything, userID, int64(450)).Return(nil)
	users.On("GetByID", mock.Anything, userID).Return(&models.User{
		ID:                userID,
		WithdrawalRequest: models.WithdrawalPending,
		WithdrawalAmount:  450,
		TotalBalance:      500,
	}, nil)

	user, err := service.Request(context.Background(), userID, 450)
	assert.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, user.WithdrawalRequest)
	assert.Equal(t, int64(450), user.WithdrawalAmount)
}

func TestWithdrawalService_Request_NonPositiveAmount(t *testing.T) {
	users := new(mockWithdrawalUserRepo)
	service := NewWithdrawalService(users, nil)

	_, err := service.Request(context.Background(), uuid.New(), 0)
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))

	_, err = service.Request(context.Background(), uuid.New(), -10)
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))
	users.AssertNotCalled(t, "RequestWithdrawal", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalService_Request_BelowThreshold(t *testing.T) {
	users := new(mockWithdrawalUserRepo)
	service := NewWithdrawalService(users, nil)

	userID := uuid.New()
	users.On("RequestWithdrawal", mock.Anything, userID, int64(100)).Return(apperror.ErrInsufficientBalance)

	_, err := service.Request(context.Background(), userID, 100)
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)
}

func TestWithdrawalService_Settle(t *testing.T) {
	users := new(mockWithdrawalUserRepo)
	service := NewWithdrawalService(users, nil)

	userID := uuid.New()
	settled := &models.User{
		ID:                userID,
		WithdrawalRequest: models.WithdrawalPaid,
		TotalBalance:      0,
		AmountWithdrawn:   500,
	}
	users.On("SettleWithdrawal", mock.Anything, userID, true).Return(settled, nil)

	user, err := service.Settle(context.Background(), userID, models.ReviewActionApprove)
	assert.NoError(t, err)
	assert.Equal(t, models.WithdrawalPaid, user.WithdrawalRequest)
	assert.Equal(t, int64(500), user.AmountWithdrawn)

	_, err = service.Settle(context.Background(), userID, "defer")
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))
}

func TestWithdrawalService_Settle_NoPending(t *testing.T) {
	users := new(mockWithdrawalUserRepo)
	service := NewWithdrawalService(users, nil)

	userID := uuid.New()
	users.On("SettleWithdrawal", mock.Anything, userID, false).Return(nil, apperror.ErrNoPendingWithdrawal)

	_, err := service.Settle(context.Background(), userID, models.ReviewActionReject)
	assert.ErrorIs(t, err, apperror.ErrNoPendingWithdrawal)
}
