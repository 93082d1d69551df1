package entity

import "time"

const (
	ResultWon  = "won"
	ResultLost = "lost"
	ResultTie  = "tie"
)

// GameRecord is one finished game as persisted for statistics.
type GameRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Result          string    `json:"result"`
	DurationMinutes float64   `json:"duration_minutes"`
	BoardSize       int       `json:"board_size"`
	Difficulty      string    `json:"difficulty"`
	FinishedAt      time.Time `json:"finished_at"`
}

// StatsSummary is the aggregate over all of a user's recorded games.
type StatsSummary struct {
	GamesPlayed       int     `json:"games_played"`
	GamesWon          int     `json:"games_won"`
	GamesTied         int     `json:"games_tied"`
	TimePlayedMinutes float64 `json:"time_played_minutes"`
}

// ResultForWinner maps a terminal game's winner mark to the local player's
// result. The local player always holds X.
func ResultForWinner(winner string) string {
	switch winner {
	case PlayerX:
		return ResultWon
	case PlayerO:
		return ResultLost
	default:
		return ResultTie
	}
}
