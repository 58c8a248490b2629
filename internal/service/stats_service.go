package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/models"
)

// StatsRepository — доступ StatsService к агрегатам.
type StatsRepository interface {
	GetPlatformProfits(ctx context.Context) (*models.PlatformProfits, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// StatsService отдаёт сводную статистику.
type StatsService struct {
	stats StatsRepository
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(stats StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// PlatformProfits возвращает финансовую сводку платформы.
func (s *StatsService) PlatformProfits(ctx context.Context) (*models.PlatformProfits, error) {
	return s.stats.GetPlatformProfits(ctx)
}

// UserStats возвращает сводку по пользователю.
func (s *StatsService) UserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return s.stats.GetUserStats(ctx, userID)
}
