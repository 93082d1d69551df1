package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/pkg"
	"github.com/gridgames/tictactoe-llm-backend/internal/service"
)

const sessionCookieName = "player_session"

type contextKey string

const playerIDKey contextKey = "playerID"

type gameManager interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	LinkUser(ctx context.Context, playerID, userID string) error
	NewGame(ctx context.Context, playerID string, size int, difficulty string) (*entity.Game, error)
	CurrentGame(ctx context.Context, playerID string) (*entity.Game, error)
	AbandonGame(ctx context.Context, playerID string) error
	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
}

type statsService interface {
	GetStats(ctx context.Context, userID string) (*service.UserStats, error)
}

type Handlers struct {
	logger *slog.Logger

	games gameManager
	stats statsService
	users userService
	auth  authService

	oauth oauthFlow
}

func NewHandlers(logger *slog.Logger, games gameManager, stats statsService, users userService, auth authService, oauth oauthFlow) *Handlers {
	return &Handlers{
		logger: logger.With("component", "handlers"),
		games:  games,
		stats:  stats,
		users:  users,
		auth:   auth,
		oauth:  oauth,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// SessionMiddleware - ensures every API request carries a player session
// cookie and puts the player ID on the request context.
func (that *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			playerID = cookie.Value
		}

		if playerID == "" {
			playerID = pkg.GenerateNewSessionID()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    playerID,
				Expires:  time.Now().Add(24 * time.Hour),
				Path:     "/",
				HttpOnly: true,
			})
		}

		ctx := context.WithValue(r.Context(), playerIDKey, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(playerIDKey).(string); ok {
		return id
	}
	return ""
}

type newGameRequest struct {
	Size       int    `json:"size"`
	Difficulty string `json:"difficulty"`
}

func (that *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := that.games.NewGame(r.Context(), playerIDFromContext(r.Context()), req.Size, req.Difficulty)
	if err != nil {
		that.writeGameError(w, r, nil, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, gameResponse{Game: game})
}

func (that *Handlers) CurrentGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.CurrentGame(r.Context(), playerIDFromContext(r.Context()))
	if err != nil {
		that.writeGameError(w, r, nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Handlers) AbandonGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.AbandonGame(r.Context(), playerIDFromContext(r.Context())); err != nil {
		that.writeGameError(w, r, nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type makeTurnRequest struct {
	Cell int `json:"cell"`
}

func (that *Handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req makeTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := that.games.MakeTurn(r.Context(), playerIDFromContext(r.Context()), req.Cell)
	if err != nil {
		that.writeGameError(w, r, game, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := that.identityFromRequest(r)

	stats, err := that.stats.GetStats(r.Context(), userID)
	if err != nil {
		that.logger.Error("failed to load stats", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

// identityFromRequest - resolves who the stats belong to: the logged-in
// user when a valid auth token is present, the anonymous session otherwise.
func (that *Handlers) identityFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return playerIDFromContext(r.Context())
	}

	userID, err := that.auth.ParseToken(cookie.Value)
	if err != nil {
		return playerIDFromContext(r.Context())
	}

	return userID
}

type gameResponse struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeGameError - maps domain errors to HTTP statuses. Oracle failures
// return 502 together with the current game state, since the local move
// already stands and only the oracle's turn was skipped.
func (that *Handlers) writeGameError(w http.ResponseWriter, r *http.Request, game *entity.Game, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidOracleMove), errors.Is(err, apperror.ErrOracleUnavailable):
		that.writeJSON(w, http.StatusBadGateway, gameResponse{Game: game, Error: "oracle move failed"})
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidBoardSize),
		errors.Is(err, apperror.ErrInvalidDifficulty):
		that.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrNotYourTurn), errors.Is(err, apperror.ErrGameFinished):
		that.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrNoActiveGames):
		that.writeError(w, http.StatusNotFound, err.Error())
	default:
		that.logger.Error("request failed", "path", r.URL.Path, "error", err)
		that.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
