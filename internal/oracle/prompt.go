package oracle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

// instructionProfile - picks the system prompt for a difficulty. Harder
// levels push the oracle toward deterministic optimal play, easier levels
// allow exploratory moves; the bias lives entirely on the oracle side.
func instructionProfile(difficulty string, size int) string {
	base := fmt.Sprintf("You play tic-tac-toe as O on a %dx%d board; %d in a row wins. "+
		"Cells are numbered row by row; occupied cells show their mark, empty cells show their number. "+
		"Answer with the number of one empty cell and nothing else.", size, size, size)

	switch difficulty {
	case entity.DifficultyHard:
		return base + " Always choose the optimal move: win if you can, otherwise block X, otherwise take the strongest cell."
	case entity.DifficultyMedium:
		return base + " Play reasonably: block obvious wins but do not always pick the perfect move."
	default:
		return base + " Play casually; any legal cell is fine."
	}
}

// BuildPrompt - renders the current position for the oracle. Occupied cells
// show their mark and empty cells their 0-based index, rows separated by
// newlines, followed by the move history.
func BuildPrompt(game *entity.Game) string {
	var sb strings.Builder

	sb.WriteString("Board:\n")
	for row := 0; row < game.Size; row++ {
		cells := make([]string, 0, game.Size)
		for col := 0; col < game.Size; col++ {
			idx := row*game.Size + col
			if game.Board[idx] == entity.EmptyCell {
				cells = append(cells, strconv.Itoa(idx))
			} else {
				cells = append(cells, game.Board[idx])
			}
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
	}

	if len(game.Moves) > 0 {
		sb.WriteString("Moves so far:")
		for _, move := range game.Moves {
			sb.WriteString(fmt.Sprintf(" %s:%d", move.Player, move.Position))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Your move:")

	return sb.String()
}
