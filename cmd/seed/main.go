// Command seed imports the development data set into MongoDB or wipes it.
//
//	go run ./cmd/seed -import -dir ./dev-data/data
//	go run ./cmd/seed -delete
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/repositories/mongodb"
	"tourbook/pkg/database"
	"tourbook/pkg/logger"
)

func main() {
	doImport := flag.Bool("import", false, "import tours, users and reviews")
	doDelete := flag.Bool("delete", false, "delete every tour, user and review")
	dir := flag.String("dir", "./dev-data/data", "directory holding tours.json, users.json and reviews.json")
	bcryptCost := flag.Int("bcrypt-cost", 0, "cost used to hash plain passwords (defaults to BCRYPT_COST)")
	flag.Parse()

	if *doImport == *doDelete {
		log.Fatal("pass exactly one of -import or -delete")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  "text",
		AppName: "seed",
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := &seeder{
		tours:   mongodb.NewTourRepository(db.Database),
		users:   mongodb.NewUserRepository(db.Database),
		reviews: mongodb.NewReviewRepository(db.Database),
		logger:  appLogger,
	}

	if *doDelete {
		if err := s.deleteAll(ctx); err != nil {
			appLogger.WithError(err).Fatal("Delete failed")
		}
		appLogger.Info("Data successfully deleted!")
		return
	}

	cost := *bcryptCost
	if cost == 0 {
		cost = cfg.Security.BcryptCost
	}
	data, err := loadDataSet(*dir, cost, time.Now())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read data set")
	}
	if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}
	if err := s.importAll(ctx, data); err != nil {
		appLogger.WithError(err).Fatal("Import failed")
	}
	appLogger.Info("Data successfully imported!")
}
