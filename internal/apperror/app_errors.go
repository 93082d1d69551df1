package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNoActiveGames     = errors.New("no active games")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidBoardSize  = errors.New("invalid board size")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidOracleMove = errors.New("invalid oracle move")
	ErrOracleUnavailable = errors.New("oracle is unavailable")
	ErrNotFound          = errors.New("not found")
)
