package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

const recentRecordsLimit = 5

type StatsService interface {
	ReportOutcome(ctx context.Context, userID string, game *entity.Game) error
	GetStats(ctx context.Context, userID string) (*UserStats, error)
}

type statsRepo interface {
	SaveRecord(ctx context.Context, record *entity.GameRecord) error
	Summary(ctx context.Context, userID string) (*entity.StatsSummary, error)
	RecentRecords(ctx context.Context, userID string, limit int) ([]entity.GameRecord, error)
}

// UserStats is the aggregate plus the most recent games, newest first.
type UserStats struct {
	entity.StatsSummary
	Recent []entity.GameRecord `json:"recent"`
}

type statsService struct {
	repo statsRepo
}

func NewStatsService(repo statsRepo) StatsService {
	return &statsService{
		repo: repo,
	}
}

// ReportOutcome - records one finished game. Called exactly once per
// terminal transition; the caller treats failure as log-only.
func (that *statsService) ReportOutcome(ctx context.Context, userID string, game *entity.Game) error {
	if !game.IsFinished() {
		return fmt.Errorf("game %s is not finished", game.ID)
	}

	now := time.Now().UTC()

	record := &entity.GameRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		Result:          entity.ResultForWinner(game.Winner),
		DurationMinutes: game.DurationMinutes(now),
		BoardSize:       game.Size,
		Difficulty:      game.Difficulty,
		FinishedAt:      now,
	}

	if err := that.repo.SaveRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save game record: %w", err)
	}

	return nil
}

func (that *statsService) GetStats(ctx context.Context, userID string) (*UserStats, error) {
	summary, err := that.repo.Summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	recent, err := that.repo.RecentRecords(ctx, userID, recentRecordsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent records: %w", err)
	}

	return &UserStats{
		StatsSummary: *summary,
		Recent:       recent,
	}, nil
}
