// services/game_service.go - Game version publishing and activation
package services

import (
	"context"
	"errors"
	"fmt"

	"lifetracker/logger"
	"lifetracker/models"
)

type GameStore interface {
	ActiveGame(ctx context.Context) (*models.Game, error)
	CreateGame(ctx context.Context, g *models.Game) error
	ListGames(ctx context.Context) ([]models.Game, error)
	ActivateGame(ctx context.Context, id uint) (*models.Game, error)
}

// GameService publishes game versions. A published version is immutable; a
// change to the board or rules is a new version.
type GameService struct {
	store GameStore
	log   *logger.Logger
}

func NewGameService(store GameStore, log *logger.Logger) *GameService {
	if log == nil {
		log = logger.Nop()
	}
	return &GameService{store: store, log: log.With("component", "games")}
}

// Publish validates g and stores it. If g.IsActive it becomes the only active game.
func (s *GameService) Publish(ctx context.Context, g *models.Game) error {
	if g.Version <= 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidGame)
	}
	if _, err := CompileGame(*g); err != nil {
		return err
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		return err
	}
	s.log.Info("game published", "game_id", g.ID, "version", g.Version, "active", g.IsActive)
	return nil
}

func (s *GameService) List(ctx context.Context) ([]models.Game, error) {
	return s.store.ListGames(ctx)
}

func (s *GameService) Activate(ctx context.Context, id uint) (*models.Game, error) {
	g, err := s.store.ActivateGame(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("game activated", "game_id", g.ID, "version", g.Version)
	return g, nil
}

// Active returns the active game or ErrInactiveGame.
func (s *GameService) Active(ctx context.Context) (*models.Game, error) {
	g, err := s.store.ActiveGame(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInactiveGame
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Bootstrap publishes g unless its version already exists, and activates it
// when nothing else is active.
func (s *GameService) Bootstrap(ctx context.Context, g models.Game) error {
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return err
	}
	anyActive := false
	for _, existing := range games {
		if existing.Version == g.Version {
			return nil
		}
		anyActive = anyActive || existing.IsActive
	}
	g.IsActive = !anyActive
	return s.Publish(ctx, &g)
}
