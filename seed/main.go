// Command seed populates the durable store with the word catalog and the
// collection placeholder markers. Run once against a fresh database.
package main

import (
	"context"
	"time"

	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/words"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range words.DefaultList {
		if _, err := store.Push(ctx, "words", map[string]interface{}{
			"word":       w.Text,
			"difficulty": w.Difficulty,
		}); err != nil {
			logger.Log.Fatalf("Failed to seed word %q: %v", w.Text, err)
		}
	}
	logger.Log.Infof("Seeded %d words", len(words.DefaultList))

	// Placeholder markers so the collections exist before the first game.
	markers := []string{"rooms", "players", "roomPlayers", "messages", "drawings"}
	for _, name := range markers {
		if err := store.Set(ctx, name+"/_init", map[string]interface{}{
			"initialized": true,
			"createdAt":   time.Now().UnixMilli(),
		}); err != nil {
			logger.Log.Fatalf("Failed to mark collection %s: %v", name, err)
		}
	}
	logger.Log.Info("Collection markers written. Seeding complete.")
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "postgres":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewMemory(), nil
	}
}
