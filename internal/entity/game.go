package entity

import (
	"fmt"
	"time"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 5
)

// Move is one placement in a game; the ordered list of moves is forwarded
// to the oracle as context and is never consulted by the win detector.
type Move struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
}

// Game is the live state of one match between a local player (X) and the
// move oracle (O). Board is stored row-major, Size*Size cells.
type Game struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	Size        int       `json:"size"`
	Board       []string  `json:"board"`
	Turn        string    `json:"player_turn"`
	Winner      string    `json:"winner,omitempty"`
	WinningLine []int     `json:"winning_line,omitempty"`
	Status      string    `json:"status"`
	Difficulty  string    `json:"difficulty"`
	Moves       []Move    `json:"moves,omitempty"`
	Revision    int       `json:"revision"`
	StartedAt   time.Time `json:"started_at"`
}

func NewGame(id, playerID string, size int, difficulty string) (*Game, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, size)
	}

	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidDifficulty, difficulty)
	}

	return &Game{
		ID:         id,
		PlayerID:   playerID,
		Size:       size,
		Board:      make([]string, size*size),
		Turn:       PlayerX,
		Status:     StatusOngoing,
		Difficulty: difficulty,
		StartedAt:  time.Now().UTC(),
	}, nil
}

func IsValidDifficulty(difficulty string) bool {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// IsFull reports whether no empty cell remains.
func (that *Game) IsFull() bool {
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("unknown game status: %s", that.Status)
	}
}

// DurationMinutes is the elapsed play time, used for the stats record.
func (that *Game) DurationMinutes(now time.Time) float64 {
	return now.Sub(that.StartedAt).Minutes()
}
