package main

import (
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the durable store
	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	logger.Log.Infof("Store ready, driver: %s", cfg.Database.Driver)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
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
