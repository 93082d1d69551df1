package oracle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)

	return body
}

func TestParseMove(t *testing.T) {
	board := []string{"X", "", "", "", "O", "", "", "", ""}

	t.Run("Accepts an empty in-range cell", func(t *testing.T) {
		// When: the oracle answers with an empty cell
		cell, err := ParseMove("5", board)

		// Then: the cell is returned
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("Accepts surrounding whitespace", func(t *testing.T) {
		cell, err := ParseMove(" 8\n", board)

		require.NoError(t, err)
		assert.Equal(t, 8, cell)
	})

	t.Run("Rejects a non-numeric reply", func(t *testing.T) {
		// When: the oracle answers with prose
		_, err := ParseMove("cell five", board)

		// Then: it fails as an invalid oracle move
		require.ErrorIs(t, err, apperror.ErrInvalidOracleMove)
	})

	t.Run("Rejects an out-of-range cell", func(t *testing.T) {
		_, err := ParseMove("9", board)

		require.ErrorIs(t, err, apperror.ErrInvalidOracleMove)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		// When: the oracle answers with cell 4, which is already occupied
		_, err := ParseMove("4", board)

		// Then: it fails as an invalid oracle move and the board is untouched
		require.ErrorIs(t, err, apperror.ErrInvalidOracleMove)
		assert.Equal(t, entity.PlayerO, board[4])
	})
}

func TestLLMClient_RequestMove(t *testing.T) {
	newGame := func(t *testing.T) *entity.Game {
		t.Helper()

		game, err := entity.NewGame("game-1", "player-1", 3, entity.DifficultyHard)
		require.NoError(t, err)
		game.Board[0] = entity.PlayerX
		game.Moves = []entity.Move{{Position: 0, Player: entity.PlayerX}}
		game.Turn = entity.PlayerO

		return game
	}

	t.Run("Returns the validated cell from the completion", func(t *testing.T) {
		// Given: an oracle endpoint answering cell 4
		var gotRequest completionRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, completionsPath, r.URL.Path)
			require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

			_, _ = w.Write(completionBody(t, "4"))
		}))
		defer server.Close()

		client := New(testLogger(), Options{
			BaseURL:      server.URL,
			APIKey:       "test-key",
			Model:        "test-model",
			Timeout:      5 * time.Second,
			Temperatures: map[string]float64{entity.DifficultyHard: 0.0},
		})

		// When: requesting a move
		cell, err := client.RequestMove(context.Background(), newGame(t))

		// Then: the cell is returned and the request used the hard profile
		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		assert.Equal(t, "test-model", gotRequest.Model)
		assert.InDelta(t, 0.0, gotRequest.Temperature, 0.001)
		require.Len(t, gotRequest.Messages, 2)
		assert.Contains(t, gotRequest.Messages[0].Content, "optimal")
	})

	t.Run("Fails with ErrInvalidOracleMove when the reply cell is occupied", func(t *testing.T) {
		// Given: an oracle endpoint answering an occupied cell
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(completionBody(t, "0"))
		}))
		defer server.Close()

		client := New(testLogger(), Options{BaseURL: server.URL, Timeout: 5 * time.Second})

		// When: requesting a move
		_, err := client.RequestMove(context.Background(), newGame(t))

		// Then: the move is rejected, no fallback is chosen
		require.ErrorIs(t, err, apperror.ErrInvalidOracleMove)
	})

	t.Run("Fails with ErrOracleUnavailable on a server error", func(t *testing.T) {
		// Given: an oracle endpoint answering 500
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "oracle exploded", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := New(testLogger(), Options{BaseURL: server.URL, Timeout: 5 * time.Second})

		// When: requesting a move
		_, err := client.RequestMove(context.Background(), newGame(t))

		// Then: the failure is surfaced as oracle unavailability
		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})

	t.Run("Fails with ErrInvalidOracleMove on an empty choices list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		client := New(testLogger(), Options{BaseURL: server.URL, Timeout: 5 * time.Second})

		_, err := client.RequestMove(context.Background(), newGame(t))

		require.ErrorIs(t, err, apperror.ErrInvalidOracleMove)
	})
}
