package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/service"
)

type stubGameManager struct {
	game    *entity.Game
	turnErr error
	linked  map[string]string
}

func (that *stubGameManager) GetOrCreatePlayer(_ context.Context, id string) (*entity.Player, error) {
	return &entity.Player{ID: id}, nil
}

func (that *stubGameManager) LinkUser(_ context.Context, playerID, userID string) error {
	if that.linked == nil {
		that.linked = make(map[string]string)
	}
	that.linked[playerID] = userID
	return nil
}

func (that *stubGameManager) NewGame(_ context.Context, playerID string, size int, difficulty string) (*entity.Game, error) {
	game, err := entity.NewGame("game-1", playerID, size, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	that.game = game
	return game, nil
}

func (that *stubGameManager) CurrentGame(_ context.Context, _ string) (*entity.Game, error) {
	if that.game == nil {
		return nil, apperror.ErrNoActiveGames
	}
	return that.game, nil
}

func (that *stubGameManager) AbandonGame(_ context.Context, _ string) error {
	if that.game == nil {
		return apperror.ErrNoActiveGames
	}
	that.game = nil
	return nil
}

func (that *stubGameManager) MakeTurn(_ context.Context, _ string, _ int) (*entity.Game, error) {
	return that.game, that.turnErr
}

type stubStatsService struct {
	lastUserID string
}

func (that *stubStatsService) GetStats(_ context.Context, userID string) (*service.UserStats, error) {
	that.lastUserID = userID
	return &service.UserStats{
		StatsSummary: entity.StatsSummary{GamesPlayed: 2, GamesWon: 1},
	}, nil
}

type stubAuthService struct {
	userID string
}

func (that *stubAuthService) GenerateToken(_, _ string) (string, error) { return "token", nil }

func (that *stubAuthService) ParseToken(tokenString string) (string, error) {
	if tokenString != "valid-token" || that.userID == "" {
		return "", errors.New("invalid token")
	}
	return that.userID, nil
}

type handlersFixture struct {
	handlers *Handlers
	games    *stubGameManager
	stats    *stubStatsService
	auth     *stubAuthService
}

func newHandlersFixture(t *testing.T) *handlersFixture {
	t.Helper()

	fixture := &handlersFixture{
		games: &stubGameManager{},
		stats: &stubStatsService{},
		auth:  &stubAuthService{},
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fixture.handlers = NewHandlers(logger, fixture.games, fixture.stats, nil, fixture.auth, nil)

	return fixture
}

func sessionRequest(method, target, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), playerIDKey, "player-1")

	return req.WithContext(ctx)
}

func TestHandlers_NewGame(t *testing.T) {
	t.Run("Creates a game and returns 201", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		req := sessionRequest(http.MethodPost, "/api/games", `{"size":3,"difficulty":"easy"}`)
		rec := httptest.NewRecorder()

		fixture.handlers.NewGame(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp gameResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Game.Board, 9)
	})

	t.Run("Rejects an unsupported size with 400", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		req := sessionRequest(http.MethodPost, "/api/games", `{"size":7,"difficulty":"easy"}`)
		rec := httptest.NewRecorder()

		fixture.handlers.NewGame(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rejects a malformed body with 400", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		req := sessionRequest(http.MethodPost, "/api/games", `{"size":`)
		rec := httptest.NewRecorder()

		fixture.handlers.NewGame(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_MakeTurn(t *testing.T) {
	newTurnFixture := func(t *testing.T, turnErr error) *handlersFixture {
		t.Helper()

		fixture := newHandlersFixture(t)
		game, err := entity.NewGame("game-1", "player-1", 3, entity.DifficultyEasy)
		require.NoError(t, err)
		fixture.games.game = game
		fixture.games.turnErr = turnErr

		return fixture
	}

	t.Run("Returns the updated game on success", func(t *testing.T) {
		fixture := newTurnFixture(t, nil)

		req := sessionRequest(http.MethodPost, "/api/games/move", `{"cell":4}`)
		rec := httptest.NewRecorder()

		fixture.handlers.MakeTurn(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Maps an occupied cell to 400", func(t *testing.T) {
		fixture := newTurnFixture(t, fmt.Errorf("failed to make turn: %w", apperror.ErrCellOccupied))

		req := sessionRequest(http.MethodPost, "/api/games/move", `{"cell":4}`)
		rec := httptest.NewRecorder()

		fixture.handlers.MakeTurn(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Maps a move out of turn to 409", func(t *testing.T) {
		fixture := newTurnFixture(t, fmt.Errorf("failed to make turn: %w", apperror.ErrNotYourTurn))

		req := sessionRequest(http.MethodPost, "/api/games/move", `{"cell":4}`)
		rec := httptest.NewRecorder()

		fixture.handlers.MakeTurn(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Maps an oracle failure to 502 and still returns the game", func(t *testing.T) {
		// Given: a turn where the local move stood but the oracle failed
		fixture := newTurnFixture(t, fmt.Errorf("oracle move failed: %w", apperror.ErrOracleUnavailable))

		req := sessionRequest(http.MethodPost, "/api/games/move", `{"cell":4}`)
		rec := httptest.NewRecorder()

		fixture.handlers.MakeTurn(rec, req)

		// Then: the client gets the game state along with the error
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var resp gameResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Game)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestHandlers_CurrentGame(t *testing.T) {
	t.Run("Returns 404 when the player has no game", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		req := sessionRequest(http.MethodGet, "/api/games/current", "")
		rec := httptest.NewRecorder()

		fixture.handlers.CurrentGame(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlers_GetStats(t *testing.T) {
	t.Run("Uses the session identity without an auth token", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		req := sessionRequest(http.MethodGet, "/api/stats", "")
		rec := httptest.NewRecorder()

		fixture.handlers.GetStats(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "player-1", fixture.stats.lastUserID)
	})

	t.Run("Uses the user ID from a valid auth token", func(t *testing.T) {
		fixture := newHandlersFixture(t)
		fixture.auth.userID = "user-42"

		req := sessionRequest(http.MethodGet, "/api/stats", "")
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()

		fixture.handlers.GetStats(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", fixture.stats.lastUserID)
	})
}

func TestHandlers_SessionMiddleware(t *testing.T) {
	t.Run("Issues a session cookie when none is present", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		var seenPlayerID string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seenPlayerID = playerIDFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/games/current", nil)
		rec := httptest.NewRecorder()

		fixture.handlers.SessionMiddleware(next).ServeHTTP(rec, req)

		require.NotEmpty(t, seenPlayerID)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.Equal(t, seenPlayerID, cookies[0].Value)
	})

	t.Run("Keeps the existing session cookie", func(t *testing.T) {
		fixture := newHandlersFixture(t)

		var seenPlayerID string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seenPlayerID = playerIDFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/games/current", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})
		rec := httptest.NewRecorder()

		fixture.handlers.SessionMiddleware(next).ServeHTTP(rec, req)

		assert.Equal(t, "existing-session", seenPlayerID)
		assert.Empty(t, rec.Result().Cookies())
	})
}
