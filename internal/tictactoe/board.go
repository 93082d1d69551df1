package tictactoe

import "github.com/gridgames/tictactoe-llm-backend/internal/entity"

// IsEmptyCell reports whether cell is a legal, unoccupied index on board.
func IsEmptyCell(board []string, cell int) bool {
	return cell >= 0 && cell < len(board) && board[cell] == entity.EmptyCell
}
