// cmd/seed - Loads a game definition and the default achievement catalog
package main

import (
	"context"
	"flag"
	stdlog "log"
	"time"

	"lifetracker/config"
	"lifetracker/database"
	"lifetracker/logger"
	"lifetracker/models"
	"lifetracker/services"
)

func main() {
	gamePath := flag.String("game", "", "YAML game file (defaults to the built-in starter board)")
	skipAchievements := flag.Bool("skip-achievements", false, "do not seed the default achievement catalog")
	flag.Parse()

	cfg := config.FromEnv()
	if err := cfg.ValidateDatabase(); err != nil {
		stdlog.Fatalf("FATAL: %v", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("FATAL: init logger: %v", err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer database.Close(db)
	store := database.NewGormStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	game := services.DefaultGame()
	if *gamePath != "" {
		g, err := config.LoadGameFile(*gamePath)
		if err != nil {
			log.Fatal("load game file", "file", *gamePath, "error", err)
		}
		game = *g
	}
	if err := seedGame(ctx, store, game, log); err != nil {
		log.Fatal("seed game", "error", err)
	}

	if !*skipAchievements {
		created, err := services.NewAchievementService(store, log).InitializeDefaults(ctx)
		if err != nil {
			log.Fatal("seed achievements", "error", err)
		}
		log.Info("achievements seeded", "created", len(created))
	}
}

// seedGame publishes game unless its version exists. An active flag in the
// file switches evaluation to it immediately.
func seedGame(ctx context.Context, store services.Store, game models.Game, log *logger.Logger) error {
	games := services.NewGameService(store, log)
	existing, err := games.List(ctx)
	if err != nil {
		return err
	}
	for _, g := range existing {
		if g.Version == game.Version {
			log.Info("game version already present", "version", game.Version)
			return nil
		}
	}
	return games.Publish(ctx, &game)
}
