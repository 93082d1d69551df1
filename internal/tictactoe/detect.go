package tictactoe

import "github.com/gridgames/tictactoe-llm-backend/internal/entity"

// DetectWinner - checks whether mark holds a full line on a size×size board
// and returns the winning line's cell indices, or nil when there is none.
//
// Lines are checked in a fixed order: rows top to bottom, columns left to
// right, main diagonal, anti-diagonal. The order fixes which line is
// reported when a single placement completes more than one.
func DetectWinner(board []string, size int, mark string) []int {
	if mark == entity.EmptyCell {
		return nil
	}

	for row := 0; row < size; row++ {
		if line := collectLine(board, mark, row*size, 1, size); line != nil {
			return line
		}
	}

	for col := 0; col < size; col++ {
		if line := collectLine(board, mark, col, size, size); line != nil {
			return line
		}
	}

	if line := collectLine(board, mark, 0, size+1, size); line != nil {
		return line
	}

	return collectLine(board, mark, size-1, size-1, size)
}

// collectLine walks size cells from start with the given stride and returns
// their indices when every one of them holds mark.
func collectLine(board []string, mark string, start, stride, size int) []int {
	line := make([]int, 0, size)
	for i := 0; i < size; i++ {
		idx := start + i*stride
		if board[idx] != mark {
			return nil
		}
		line = append(line, idx)
	}

	return line
}
