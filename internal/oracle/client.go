package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/tictactoe"
)

const completionsPath = "/v1/chat/completions"

// Client is the move oracle consulted for the non-local player's turn.
// Implementations return the chosen empty cell index for the oracle mark.
type Client interface {
	RequestMove(ctx context.Context, game *entity.Game) (int, error)
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// Sampling temperature per difficulty; harder play uses lower
	// randomness. Difficulty carries no other local meaning.
	Temperatures map[string]float64
}

type llmClient struct {
	logger *slog.Logger

	httpClient *http.Client
	options    Options
}

// New - creates an oracle client backed by a chat-completions endpoint.
func New(logger *slog.Logger, options Options) Client {
	return &llmClient{
		logger:     logger.With("component", "oracle"),
		httpClient: &http.Client{Timeout: options.Timeout},
		options:    options,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// RequestMove - asks the oracle for one move. Exactly one request is made;
// there is no retry and no local fallback move. The reply is validated
// against the given board before it is returned.
func (that *llmClient) RequestMove(ctx context.Context, game *entity.Game) (int, error) {
	reqBody := completionRequest{
		Model: that.options.Model,
		Messages: []chatMessage{
			{Role: "system", Content: instructionProfile(game.Difficulty, game.Size)},
			{Role: "user", Content: BuildPrompt(game)},
		},
		Temperature: that.temperatureFor(game.Difficulty),
		MaxTokens:   8,
	}

	that.logger.Debug("requesting oracle move", "gameID", game.ID, "difficulty", game.Difficulty)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.options.BaseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build oracle request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+that.options.APIKey)

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperror.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", apperror.ErrOracleUnavailable, resp.StatusCode, body)
	}

	var completion completionResponse
	if err = json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return 0, fmt.Errorf("failed to decode oracle response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty completion", apperror.ErrInvalidOracleMove)
	}

	return ParseMove(completion.Choices[0].Message.Content, game.Board)
}

// ParseMove - parses the oracle's reply and validates it against the board:
// the move must be an integer, in range, and refer to an empty cell.
func ParseMove(reply string, board []string) (int, error) {
	trimmed := strings.TrimSpace(reply)

	cell, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: not a number: %q", apperror.ErrInvalidOracleMove, trimmed)
	}

	if cell < 0 || cell >= len(board) {
		return 0, fmt.Errorf("%w: cell %d out of range", apperror.ErrInvalidOracleMove, cell)
	}

	if !tictactoe.IsEmptyCell(board, cell) {
		return 0, fmt.Errorf("%w: cell %d is occupied", apperror.ErrInvalidOracleMove, cell)
	}

	return cell, nil
}

func (that *llmClient) temperatureFor(difficulty string) float64 {
	if temp, ok := that.options.Temperatures[difficulty]; ok {
		return temp
	}
	return 0.7
}
