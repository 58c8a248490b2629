package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/service"
)

// SubmissionHandler предоставляет HTTP слой для сдачи работ.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler создаёт хэндлер.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Create обрабатывает POST /submissions.
func (h *SubmissionHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		BidID   string `json:"bid_id" binding:"required"`
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bidID, err := uuid.Parse(req.BidID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bid_id должен быть валидным UUID"})
		return
	}

	submission, err := h.submissions.Create(c.Request.Context(), userID, bidID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListMy обрабатывает GET /submissions/my.
func (h *SubmissionHandler) ListMy(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	submissions, err := h.submissions.ListMy(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}
