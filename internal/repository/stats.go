package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

type StatsRepository interface {
	SaveRecord(ctx context.Context, record *entity.GameRecord) error
	Summary(ctx context.Context, userID string) (*entity.StatsSummary, error)
	RecentRecords(ctx context.Context, userID string, limit int) ([]entity.GameRecord, error)
}

type statsRepository struct {
	conn *sql.DB
}

func NewStatsRepository(conn *sql.DB) StatsRepository {
	return &statsRepository{
		conn: conn,
	}
}

func (that *statsRepository) SaveRecord(ctx context.Context, record *entity.GameRecord) error {
	query := `INSERT INTO game_records (id, user_id, result, duration_minutes, board_size, difficulty, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		record.ID, record.UserID, record.Result, record.DurationMinutes,
		record.BoardSize, record.Difficulty, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("can't save game record: %w", err)
	}

	return nil
}

func (that *statsRepository) Summary(ctx context.Context, userID string) (*entity.StatsSummary, error) {
	query := `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(duration_minutes), 0)
		FROM game_records WHERE user_id = ?`

	var summary entity.StatsSummary

	err := that.conn.QueryRowContext(ctx, query, entity.ResultWon, entity.ResultTie, userID).
		Scan(&summary.GamesPlayed, &summary.GamesWon, &summary.GamesTied, &summary.TimePlayedMinutes)
	if err != nil {
		return nil, fmt.Errorf("can't load stats summary: %w", err)
	}

	return &summary, nil
}

func (that *statsRepository) RecentRecords(ctx context.Context, userID string, limit int) ([]entity.GameRecord, error) {
	query := `SELECT id, user_id, result, duration_minutes, board_size, difficulty, finished_at
		FROM game_records WHERE user_id = ?
		ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't load recent records: %w", err)
	}
	defer rows.Close()

	var records []entity.GameRecord
	for rows.Next() {
		var record entity.GameRecord
		if err = rows.Scan(&record.ID, &record.UserID, &record.Result, &record.DurationMinutes,
			&record.BoardSize, &record.Difficulty, &record.FinishedAt); err != nil {
			return nil, fmt.Errorf("can't scan game record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read game records: %w", err)
	}

	return records, nil
}
