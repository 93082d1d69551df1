package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/pkg"
	"github.com/gridgames/tictactoe-llm-backend/internal/repository"
	"github.com/gridgames/tictactoe-llm-backend/internal/tictactoe"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type oracleClient interface {
	RequestMove(ctx context.Context, game *entity.Game) (int, error)
}

type statsReporter interface {
	ReportOutcome(ctx context.Context, userID string, game *entity.Game) error
}

// GameManager coordinates turns between the local player and the move
// oracle. The local player always holds X and moves first; the oracle
// holds O. While an oracle request is in flight the stored game's turn
// field holds O, so concurrent local moves fail with ErrNotYourTurn.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	oracle     oracleClient
	stats      statsReporter
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, oracle oracleClient, stats statsReporter) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		oracle:     oracle,
		stats:      stats,
	}
}

// GetOrCreatePlayer - returns the session player, creating it on first
// contact.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = pkg.GenerateNewSessionID()
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err == nil {
		return player, nil
	}

	if !errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	player = &entity.Player{ID: id}
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// LinkUser - attaches a logged-in user to the session player so finished
// games are recorded under the durable user ID.
func (that *GameManager) LinkUser(ctx context.Context, playerID, userID string) error {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return err
	}

	player.UserID = userID
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// NewGame - starts a fresh game for the session player, discarding any
// game the player was in. A pending oracle response for the discarded game
// fails the revision guard and is dropped.
func (that *GameManager) NewGame(ctx context.Context, playerID string, size int, difficulty string) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID != "" {
		if err = that.gameRepo.DeleteByID(ctx, player.GameID); err != nil {
			that.logger.Error("failed to delete previous game", "gameID", player.GameID, "error", err)
		}
	}

	newGame, err := entity.NewGame(pkg.GenerateGameID(), player.ID, size, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	player.GameID = newGame.ID
	player.Mark = entity.PlayerX
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	return newGame, nil
}

// CurrentGame - returns the game the session player is in.
func (that *GameManager) CurrentGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return nil, apperror.ErrNoActiveGames
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// AbandonGame - discards the player's current game without recording an
// outcome.
func (that *GameManager) AbandonGame(ctx context.Context, playerID string) error {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return err
	}

	if player.GameID == "" {
		return apperror.ErrNoActiveGames
	}

	if err = that.gameRepo.DeleteByID(ctx, player.GameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	player.GameID = ""
	player.Mark = ""
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// MakeTurn - applies the local player's move and, when the game goes on,
// resolves the oracle's answering move. The game with the local move is
// persisted before the oracle is consulted, so another request meanwhile
// sees O to move and is rejected.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return nil, apperror.ErrNoActiveGames
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = tictactoe.MakeTurn(game, entity.PlayerX, cell); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	if game.IsFinished() {
		that.reportOutcome(ctx, player, game)
		return game, nil
	}

	return that.resolveOracleTurn(ctx, player, game)
}

// resolveOracleTurn - requests one move from the oracle and applies it.
// On any oracle failure the move is not applied and the turn is handed
// back to the local player; the oracle's turn is skipped, not retried.
func (that *GameManager) resolveOracleTurn(ctx context.Context, player *entity.Player, game *entity.Game) (*entity.Game, error) {
	log := that.logger.With("method", "resolveOracleTurn", "gameID", game.ID)

	oracleCell, err := that.oracle.RequestMove(ctx, game)
	if err != nil {
		return that.skipOracleTurn(ctx, game, log, err)
	}

	// The game may have been reset or superseded while the request was
	// out; a response for a stale revision must be discarded.
	fresh, err := that.gameRepo.GetByID(ctx, game.ID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			log.Info("discarding oracle move for a discarded game")
			return nil, fmt.Errorf("failed to apply oracle move: %w", apperror.ErrNoActiveGames)
		}
		return nil, fmt.Errorf("failed to reload game: %w", err)
	}

	if fresh.Revision != game.Revision {
		log.Info("discarding stale oracle move", "expected", game.Revision, "actual", fresh.Revision)
		return fresh, nil
	}

	if err = tictactoe.MakeTurn(fresh, entity.PlayerO, oracleCell); err != nil {
		return that.skipOracleTurn(ctx, fresh, log, fmt.Errorf("%w: %w", apperror.ErrInvalidOracleMove, err))
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	if fresh.IsFinished() {
		that.reportOutcome(ctx, player, fresh)
	}

	return fresh, nil
}

// skipOracleTurn - hands the turn back to the local player after an oracle
// failure. The board is unchanged and the game stays ongoing with the
// oracle's turn unresolved; the anomaly is surfaced to the caller.
func (that *GameManager) skipOracleTurn(ctx context.Context, game *entity.Game, log *slog.Logger, cause error) (*entity.Game, error) {
	log.Warn("oracle turn skipped", "error", cause)

	game.Turn = entity.PlayerX
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	return game, fmt.Errorf("oracle move failed: %w", cause)
}

// reportOutcome - fire-and-forget stats notification for a finished game.
// A report failure never affects the finalized game state.
func (that *GameManager) reportOutcome(ctx context.Context, player *entity.Player, game *entity.Game) {
	userID := player.UserID
	if userID == "" {
		userID = player.ID
	}

	if err := that.stats.ReportOutcome(ctx, userID, game); err != nil {
		that.logger.Error("failed to report game outcome", "gameID", game.ID, "error", err)
	}
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, apperror.ErrNoActiveGames
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
