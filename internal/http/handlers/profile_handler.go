package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/dto"
	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/service"
)

// ProfileUserRepository — чтение пользователей для профиля.
type ProfileUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProfileHandler отдаёт профиль и дашборд пользователя.
type ProfileHandler struct {
	users ProfileUserRepository
	stats *service.StatsService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(users ProfileUserRepository, stats *service.StatsService) *ProfileHandler {
	return &ProfileHandler{users: users, stats: stats}
}

// Me обрабатывает GET /profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Dashboard обрабатывает GET /profile/dashboard — профиль со статистикой.
func (h *ProfileHandler) Dashboard(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.stats.UserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{User: user, Stats: stats})
}
