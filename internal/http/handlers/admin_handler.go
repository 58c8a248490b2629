package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techgeo/backend/internal/dto"
	"github.com/techgeo/backend/internal/service"
)

// AdminHandler собирает все админские операции: модерацию заявок и работ,
// очередь выводов и финансовую сводку.
type AdminHandler struct {
	bids        *service.BidService
	submissions *service.SubmissionService
	withdrawals *service.WithdrawalService
	stats       *service.StatsService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(
	bids *service.BidService,
	submissions *service.SubmissionService,
	withdrawals *service.WithdrawalService,
	stats *service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		bids:        bids,
		submissions: submissions,
		withdrawals: withdrawals,
		stats:       stats,
	}
}

// ListBids обрабатывает GET /admin/bids?status=pending.
func (h *AdminHandler) ListBids(c *gin.Context) {
	bids, err := h.bids.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}

// ReviewBid обрабатывает POST /admin/bids/:id/review.
func (h *AdminHandler) ReviewBid(c *gin.Context) {
	bidID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bids.Review(c.Request.Context(), bidID, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

// ListSubmissions обрабатывает GET /admin/submissions?status=submitted.
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.submissions.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// StartSubmissionReview обрабатывает POST /admin/submissions/:id/start-review.
func (h *AdminHandler) StartSubmissionReview(c *gin.Context) {
	submissionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	submission, err := h.submissions.StartReview(c.Request.Context(), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ReviewSubmission обрабатывает POST /admin/submissions/:id/review.
func (h *AdminHandler) ReviewSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Action     string `json:"action" binding:"required"`
		AdminNotes string `json:"admin_notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissions.Review(c.Request.Context(), submissionID, req.Action, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListWithdrawals обрабатывает GET /admin/withdrawals.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	users, err := h.withdrawals.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	queue := make([]dto.WithdrawalQueueItem, 0, len(users))
	for i := range users {
		queue = append(queue, dto.NewWithdrawalQueueItem(&users[i]))
	}

	c.JSON(http.StatusOK, queue)
}

// SettleWithdrawal обрабатывает POST /admin/withdrawals/:id/settle.
// Параметр id — идентификатор пользователя с pending-заявкой.
func (h *AdminHandler) SettleWithdrawal(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.withdrawals.Settle(c.Request.Context(), userID, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Profits обрабатывает GET /admin/profits.
func (h *AdminHandler) Profits(c *gin.Context) {
	profits, err := h.stats.PlatformProfits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profits)
}
