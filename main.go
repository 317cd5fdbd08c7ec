package main

import (
	"context"
	"log"
	"net/http"

	"oohdesk/adapters/excel"
	"oohdesk/adapters/geocode"
	"oohdesk/adapters/postgres"
	"oohdesk/adapters/storage"
	"oohdesk/app"
	"oohdesk/internal"
	"oohdesk/internal/config"
	"oohdesk/internal/errors"
	"oohdesk/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "schema setup failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Adapters
	reader := excel.NewDataReader(appConfig.Import.MaxUploadBytes)
	points := postgres.NewPointRepository(db)
	layers := postgres.NewLayerRepository(db)
	images := storage.NewLocalImageStore(db, appConfig.Import.ImagesDir)
	geocoder := geocode.NewClient(appConfig.Geocoder.BaseURL, appConfig.Geocoder.UserAgent)

	// Application services
	imports := app.NewImportService(reader, points, images, logger)
	runner := app.NewGeocodeRunner(geocoder, layers, logger,
		appConfig.Geocoder.RowDelay, appConfig.Geocoder.RateLimitBackoff)

	webApp := ui.NewApp(ui.Config{MaxUploadBytes: appConfig.Import.MaxUploadBytes},
		imports, runner, layers, logger)

	addr := ":" + appConfig.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, webApp.Router()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
