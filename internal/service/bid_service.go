package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/logger"
	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
	"github.com/techgeo/backend/internal/validation"
)

// BidWindow — скользящее окно лимита заявок.
const BidWindow = 48 * time.Hour

// BidValidityPeriod — срок действия заявки после создания.
const BidValidityPeriod = 30 * 24 * time.Hour

// BidUserRepository — доступ BidService к пользователям.
type BidUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BidStore — доступ BidService к заявкам.
type BidStore interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bid, error)
	ListByStatus(ctx context.Context, status string) ([]models.Bid, error)
	CountRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// Notifier доставляет события пользователю (WebSocket хаб).
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// BidService управляет жизненным циклом заявок.
type BidService struct {
	bids     BidStore
	users    BidUserRepository
	notifier Notifier
}

// NewBidService создаёт сервис заявок.
func NewBidService(bids BidStore, users BidUserRepository, notifier Notifier) *BidService {
	return &BidService{bids: bids, users: users, notifier: notifier}
}

// Create принимает новую заявку. Выплата выводится из типа задачи на сервере,
// клиентская сумма не принимается.
func (s *BidService) Create(ctx context.Context, userID uuid.UUID, taskType, sampleText string) (*models.Bid, error) {
	if _, ok := models.ValidTaskTypes[taskType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "тип задачи должен быть blog или survey")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.HasPremiumPackage {
		return nil, apperror.ErrPremiumRequired
	}
	if user.ActiveDirectReferrals < models.MinReferralsToBid {
		return nil, apperror.ErrNotEnoughReferrals
	}

	sanitized, err := validation.ValidateBidSample(sampleText)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	recent, err := s.bids.CountRecentByUser(ctx, userID, time.Now().Add(-BidWindow))
	if err != nil {
		return nil, err
	}
	if recent >= models.MaxBidsPerWindow {
		return nil, apperror.ErrBidLimitReached
	}

	bid := &models.Bid{
		UserID:       userID,
		Username:     user.Username,
		TaskType:     taskType,
		PayoutAmount: models.TaskPayouts[taskType],
		SampleText:   sanitized,
		ExpiresAt:    time.Now().Add(BidValidityPeriod),
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}

	return bid, nil
}

// ListMy возвращает заявки пользователя.
func (s *BidService) ListMy(ctx context.Context, userID uuid.UUID) ([]models.Bid, error) {
	return s.bids.ListByUser(ctx, userID)
}

// List возвращает заявки для админской панели с фильтром по статусу.
func (s *BidService) List(ctx context.Context, status string) ([]models.Bid, error) {
	if status != "" {
		switch status {
		case models.BidStatusPending, models.BidStatusApproved,
			models.BidStatusRejected, models.BidStatusExpired:
		default:
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус заявки")
		}
	}
	return s.bids.ListByStatus(ctx, status)
}

// Review применяет решение админа к pending-заявке.
func (s *BidService) Review(ctx context.Context, bidID uuid.UUID, action string) (*models.Bid, error) {
	var (
		bid *models.Bid
		err error
	)

	switch action {
	case models.ReviewActionApprove:
		bid, err = s.bids.Approve(ctx, bidID)
	case models.ReviewActionReject:
		bid, err = s.bids.Reject(ctx, bidID)
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "действие должно быть approve или reject")
	}
	if err != nil {
		return nil, err
	}

	s.notify(bid.UserID, "bid_reviewed", map[string]any{
		"bid_id": bid.ID,
		"status": bid.Status,
	})

	return bid, nil
}

// StartExpirySweep периодически переводит просроченные pending-заявки
// в expired, пока не закрыт контекст.
func (s *BidService) StartExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.bids.ExpireStale(ctx)
			if err != nil {
				if logger.Log != nil {
					logger.Log.WithError(err).Error("bid service: ошибка при просрочке заявок")
				}
				continue
			}
			if n > 0 && logger.Log != nil {
				logger.Log.WithField("expired", n).Info("bid service: заявки помечены просроченными")
			}
		}
	}
}

func (s *BidService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("bid service: не удалось отправить уведомление")
	}
}
