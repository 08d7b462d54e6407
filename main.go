package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberworks/questengine/cache"
	"github.com/emberworks/questengine/config"
	dbadapter "github.com/emberworks/questengine/db"
	"github.com/emberworks/questengine/logging"
	"github.com/emberworks/questengine/model"
	"github.com/emberworks/questengine/quest"
	"github.com/emberworks/questengine/scheduler"
	"go.uber.org/zap"
)

// questd is the maintenance daemon: it validates and loads the quest
// definition tree, runs migrations and keeps the expiry sweep ticking.
// Game servers embed the quest package directly and wire their own
// player/world adapters; this process owns only the background half.
func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("database ready", zap.String("mode", cfg.Database.Mode))

	c, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	registry := quest.NewRegistry(logger)
	if err := registry.Load(cfg.Quests.Dir); err != nil {
		log.Fatalf("quests: %v", err)
	}

	store := quest.NewGormStore(db, c, cfg.Cache.StateTTL, logger)
	engine := quest.NewEngine(quest.EngineParams{
		Registry: registry,
		Store:    store,
		Cooldowns: &quest.CooldownConfig{
			Daily:    cfg.Engine.DailyCooldown,
			Weekly:   cfg.Engine.WeeklyCooldown,
			Event:    cfg.Engine.EventCooldown,
			Infinite: cfg.Engine.InfiniteCooldown,
		},
		Logger: logger,
	})

	sched := scheduler.New(logger)
	defer sched.Stop()
	engine.StartExpirySweep(sched, cfg.Engine.SweepInterval)

	logger.Info("questd running",
		zap.Int("quests", registry.Len()),
		zap.Duration("sweep_interval", cfg.Engine.SweepInterval))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")
}
