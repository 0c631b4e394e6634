// main.go - Gamification service entry point
package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"lifetracker/config"
	"lifetracker/database"
	"lifetracker/handlers"
	"lifetracker/handlers/admin"
	"lifetracker/logger"
	"lifetracker/metrics"
	"lifetracker/middleware"
	"lifetracker/realtime"
	"lifetracker/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("FATAL: %v", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("FATAL: init logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("closing database", "error", err)
		}
	}()
	store := database.NewGormStore(db)

	hub := realtime.NewHub(log)
	var emitter services.Emitter = hub
	if cfg.RedisAddr != "" {
		bus, err := realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			log.Warn("redis unavailable, delivering events in-process only", "error", err)
		} else {
			defer bus.Close()
			if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
				log.Warn("redis forwarder failed, delivering events in-process only", "error", err)
			} else {
				emitter = bus
			}
		}
	}

	engine := services.NewProgressEngine(store, log, services.WithEmitter(emitter))
	games := services.NewGameService(store, log)
	achievements := services.NewAchievementService(store, log)
	leaderboard := services.NewLeaderboardService(store, cfg.LeaderboardMaxLimit)

	if cfg.GameFile != "" {
		if err := bootstrapGame(ctx, games, cfg.GameFile); err != nil {
			log.Fatal("game bootstrap failed", "file", cfg.GameFile, "error", err)
		}
	}

	weeklyJob := services.NewWeeklyResetJob(engine, store, log)
	if err := weeklyJob.Schedule(cfg.WeeklyResetCron); err != nil {
		log.Fatal("invalid weekly reset schedule", "error", err)
	}
	weeklyJob.Start()

	handlers.InitGamificationHandlers(handlers.Deps{
		Engine:       engine,
		Leaderboard:  leaderboard,
		Achievements: achievements,
		Games:        games,
		History:      store,
		Counters:     store,
		Hub:          hub,
		Log:          log,
	})
	admin.InitAdminHandlers(admin.Deps{
		Games:        games,
		Achievements: achievements,
		Engine:       engine,
		WeeklyJob:    weeklyJob,
		Log:          log,
	})

	actionLimiter := middleware.NewRateLimiter(cfg.ActionRateLimit, cfg.ActionRateWindow)
	go actionLimiter.RunCleanup(ctx, 10*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler(cfg),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handlers.RegisterRoutes(app, cfg.JWTSecret, actionLimiter)

	go func() {
		log.Info("http server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	weeklyJob.Stop()
}

func bootstrapGame(ctx context.Context, games *services.GameService, path string) error {
	g, err := config.LoadGameFile(path)
	if err != nil {
		return err
	}
	return games.Bootstrap(ctx, *g)
}

func customErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}
		if cfg.IsProduction() && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
