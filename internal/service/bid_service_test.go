package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

type mockBidStore struct {
	mock.Mock
}

func (m *mockBidStore) Create(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *mockBidStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidStore) ListByStatus(ctx context.Context, status string) ([]models.Bid, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidStore) CountRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockBidStore) Approve(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidStore) Reject(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidStore) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockBidUserRepo struct {
	mock.Mock
}

func (m *mockBidUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func eligibleBidder() *models.User {
	return &models.User{
		ID:                    uuid.New(),
		Username:              "bidder",
		Active:                true,
		HasPremiumPackage:     true,
		ActiveDirectReferrals: 2,
	}
}

func validSample() string {
	return strings.Repeat("пример текста ", 10)
}

func TestBidService_Create(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	bids.On("CountRecentByUser", mock.Anything, user.ID, mock.Anything).Return(0, nil)
	bids.On("Create", mock.Anything, mock.Anything).Return(nil)

	bid, err := service.Create(context.Background(), user.ID, models.TaskTypeBlog, validSample())
	assert.NoError(t, err)
	assert.Equal(t, models.TaskPayouts[models.TaskTypeBlog], bid.PayoutAmount)
	assert.Equal(t, "bidder", bid.Username)
	assert.WithinDuration(t, time.Now().Add(BidValidityPeriod), bid.ExpiresAt, time.Minute)
}

func TestBidService_Create_SurveyPayout(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	bids.On("CountRecentByUser", mock.Anything, user.ID, mock.Anything).Return(4, nil)
	bids.On("Create", mock.Anything, mock.Anything).Return(nil)

	bid, err := service.Create(context.Background(), user.ID, models.TaskTypeSurvey, validSample())
	assert.NoError(t, err)
	assert.Equal(t, models.TaskPayouts[models.TaskTypeSurvey], bid.PayoutAmount)
}

func TestBidService_Create_UnknownTaskType(t *testing.T) {
	service := NewBidService(new(mockBidStore), new(mockBidUserRepo), nil)

	_, err := service.Create(context.Background(), uuid.New(), "video", validSample())
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))
}

func TestBidService_Create_RequiresPremium(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	user.HasPremiumPackage = false
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := service.Create(context.Background(), user.ID, models.TaskTypeBlog, validSample())
	assert.ErrorIs(t, err, apperror.ErrPremiumRequired)
}

func TestBidService_Create_RequiresReferrals(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	user.ActiveDirectReferrals = 1
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := service.Create(context.Background(), user.ID, models.TaskTypeBlog, validSample())
	assert.ErrorIs(t, err, apperror.ErrNotEnoughReferrals)
}

func TestBidService_Create_SampleBounds(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	bids.On("CountRecentByUser", mock.Anything, user.ID, mock.Anything).Return(0, nil)
	bids.On("Create", mock.Anything, mock.Anything).Return(nil)

	ctx := context.Background()

	_, err := service.Create(ctx, user.ID, models.TaskTypeBlog, strings.Repeat("a", 49))
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation), "49 символов — слишком коротко")

	_, err = service.Create(ctx, user.ID, models.TaskTypeBlog, strings.Repeat("a", 50))
	assert.NoError(t, err, "50 символов — нижняя граница")

	_, err = service.Create(ctx, user.ID, models.TaskTypeBlog, strings.Repeat("a", 2000))
	assert.NoError(t, err, "2000 символов — верхняя граница")

	_, err = service.Create(ctx, user.ID, models.TaskTypeBlog, strings.Repeat("a", 2001))
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation), "2001 символ — слишком длинно")
}

func TestBidService_Create_RateLimit(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	user := eligibleBidder()
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	bids.On("CountRecentByUser", mock.Anything, user.ID, mock.Anything).Return(models.MaxBidsPerWindow, nil)

	_, err := service.Create(context.Background(), user.ID, models.TaskTypeBlog, validSample())
	assert.ErrorIs(t, err, apperror.ErrBidLimitReached)
	bids.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBidService_Review(t *testing.T) {
	bids := new(mockBidStore)
	users := new(mockBidUserRepo)
	service := NewBidService(bids, users, nil)

	bidID := uuid.New()
	approved := &models.Bid{ID: bidID, UserID: uuid.New(), Status: models.BidStatusApproved}
	bids.On("Approve", mock.Anything, bidID).Return(approved, nil)

	bid, err := service.Review(context.Background(), bidID, models.ReviewActionApprove)
	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusApproved, bid.Status)

	_, err = service.Review(context.Background(), bidID, "maybe")
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))
}
