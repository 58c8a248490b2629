package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/logger"
	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
	"github.com/techgeo/backend/internal/validation"
)

// SubmissionBidRepository — доступ SubmissionService к заявкам.
type SubmissionBidRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
}

// SubmissionStore — доступ SubmissionService к работам.
type SubmissionStore interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ExistsForBid(ctx context.Context, bidID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error)
	ListByStatus(ctx context.Context, status string) ([]models.Submission, error)
	StartReview(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*models.Submission, error)
	Reject(ctx context.Context, id uuid.UUID, adminNotes string) (*models.Submission, error)
}

// SubmissionService управляет сдачей и проверкой работ.
type SubmissionService struct {
	submissions SubmissionStore
	bids        SubmissionBidRepository
	notifier    Notifier
}

// NewSubmissionService создаёт сервис работ.
func NewSubmissionService(submissions SubmissionStore, bids SubmissionBidRepository, notifier Notifier) *SubmissionService {
	return &SubmissionService{submissions: submissions, bids: bids, notifier: notifier}
}

// Create принимает работу по одобренной заявке. Сумма выплаты фиксируется
// из заявки в момент сдачи и дальше не меняется.
func (s *SubmissionService) Create(ctx context.Context, userID uuid.UUID, bidID uuid.UUID, content string) (*models.Submission, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.UserID != userID {
		return nil, apperror.ErrBidOwnershipMismatch
	}
	if bid.Status != models.BidStatusApproved {
		return nil, apperror.ErrBidNotApproved
	}

	exists, err := s.submissions.ExistsForBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrSubmissionAlreadyExists
	}

	sanitized, err := validation.ValidateSubmissionContent(content)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	submission := &models.Submission{
		BidID:         bidID,
		UserID:        userID,
		Username:      bid.Username,
		TaskType:      bid.TaskType,
		Content:       sanitized,
		PaymentAmount: bid.PayoutAmount,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// ListMy возвращает работы пользователя.
func (s *SubmissionService) ListMy(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	return s.submissions.ListByUser(ctx, userID)
}

// List возвращает работы для админской панели с фильтром по статусу.
func (s *SubmissionService) List(ctx context.Context, status string) ([]models.Submission, error) {
	if status != "" {
		switch status {
		case models.SubmissionStatusSubmitted, models.SubmissionStatusUnderReview,
			models.SubmissionStatusApproved, models.SubmissionStatusRejected:
		default:
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус работы")
		}
	}
	return s.submissions.ListByStatus(ctx, status)
}

// StartReview помечает работу взятой на проверку.
func (s *SubmissionService) StartReview(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return s.submissions.StartReview(ctx, id)
}

// Review применяет решение админа к работе. Одобрение зачисляет
// зафиксированную выплату на баланс исполнителя ровно один раз.
func (s *SubmissionService) Review(ctx context.Context, id uuid.UUID, action, adminNotes string) (*models.Submission, error) {
	var (
		submission *models.Submission
		err        error
	)

	switch action {
	case models.ReviewActionApprove:
		submission, err = s.submissions.Approve(ctx, id, adminNotes)
	case models.ReviewActionReject:
		submission, err = s.submissions.Reject(ctx, id, adminNotes)
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "действие должно быть approve или reject")
	}
	if err != nil {
		return nil, err
	}

	s.notify(submission.UserID, "submission_reviewed", map[string]any{
		"submission_id": submission.ID,
		"status":        submission.Status,
		"amount":        submission.PaymentAmount,
	})

	return submission, nil
}

func (s *SubmissionService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("submission service: не удалось отправить уведомление")
	}
}
