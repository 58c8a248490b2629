package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techgeo/backend/internal/service"
)

// BidHandler предоставляет HTTP слой для заявок на задачи.
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler создаёт хэндлер.
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Create обрабатывает POST /bids. Сумма выплаты в запросе не принимается,
// она определяется типом задачи на сервере.
func (h *BidHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		TaskType   string `json:"task_type" binding:"required"`
		SampleText string `json:"sample_text" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bids.Create(c.Request.Context(), userID, req.TaskType, req.SampleText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// ListMy обрабатывает GET /bids/my.
func (h *BidHandler) ListMy(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bids, err := h.bids.ListMy(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}
