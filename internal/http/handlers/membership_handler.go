package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techgeo/backend/internal/service"
)

// MembershipHandler предоставляет HTTP слой для взноса и премиум-пакета.
type MembershipHandler struct {
	membership *service.MembershipService
}

// NewMembershipHandler создаёт хэндлер.
func NewMembershipHandler(membership *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membership: membership}
}

// ConfirmJoiningFee обрабатывает POST /membership/joining-fee.
func (h *MembershipHandler) ConfirmJoiningFee(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.membership.ConfirmJoiningFee(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpgradePremium обрабатывает POST /membership/premium.
func (h *MembershipHandler) UpgradePremium(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.membership.UpgradePremium(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
