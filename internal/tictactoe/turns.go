package tictactoe

import (
	"fmt"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

// MakeTurn - places player's mark on cell and advances the game state.
// The placement is validated first; on any validation error the game is
// left untouched. After a placement the winner check runs for the placed
// mark only, then the draw check, then the turn passes to the other mark.
func MakeTurn(gameInstance *entity.Game, player string, cell int) error {
	if err := gameInstance.ConfirmOngoingState(); err != nil {
		return err
	}

	if err := validateMove(gameInstance, player, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	gameInstance.Board[cell] = player
	gameInstance.Moves = append(gameInstance.Moves, entity.Move{Position: cell, Player: player})
	gameInstance.Revision++

	updateGameStatus(gameInstance, player)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(gameInstance *entity.Game, playerTurn string, cell int) error {
	if cell < 0 || cell >= len(gameInstance.Board) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	if gameInstance.Turn != playerTurn {
		return apperror.ErrNotYourTurn
	}

	if gameInstance.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game result after a move. A move that both
// completes a line and fills the board counts as a win, not a tie.
func updateGameStatus(gameInstance *entity.Game, player string) {
	if line := DetectWinner(gameInstance.Board, gameInstance.Size, player); line != nil {
		gameInstance.Winner = player
		gameInstance.WinningLine = line
		gameInstance.Status = entity.StatusFinished
		gameInstance.Turn = ""
		return
	}

	if gameInstance.IsFull() {
		gameInstance.Winner = entity.PlayerTie
		gameInstance.Status = entity.StatusFinished
		gameInstance.Turn = ""
		return
	}

	gameInstance.Turn = toggleMark(player)
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
