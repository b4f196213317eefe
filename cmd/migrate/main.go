package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yieldvault.backend/internal/config"
	"yieldvault.backend/internal/infrastructure/datasources"
	"yieldvault.backend/internal/infrastructure/models"
	"yieldvault.backend/internal/infrastructure/repositories"
	"yieldvault.backend/pkg/logger"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	openDB     = datasources.Open
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer datasources.Close(db)

	if err := migrate(db, cfg.Database.Driver); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info(context.Background(), "Schema up to date", zap.String("driver", cfg.Database.Driver))
	return nil
}

// sqlite keeps amounts as TEXT; the decimal(54,18) model columns would get numeric affinity there
func migrate(db *gorm.DB, driver string) error {
	if driver == datasources.DriverSQLite {
		return repositories.CreateSQLiteSchema(db)
	}
	return models.AutoMigrate(db)
}
