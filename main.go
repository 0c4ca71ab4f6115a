package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"aivaceo/adapters/api"
	"aivaceo/adapters/db"
	"aivaceo/adapters/memory"
	"aivaceo/app"
	"aivaceo/internal/config"
	"aivaceo/internal/watcher"
	"aivaceo/ui"
)

// initDatabase connects to DATABASE_URL when it is set
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Sources.DatabaseURL == "" {
		return nil, nil
	}
	conn, err := db.Connect(ctx, appConfig.Sources.DatabaseDriver, appConfig.Sources.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to %s database", appConfig.Sources.DatabaseDriver)
	return conn, nil
}

// preloadFile loads DATA_FILE and, with DATA_WATCH, reloads it whenever it changes
func preloadFile(ctx context.Context, service *app.ScanService, data config.DataConfig) (*watcher.Watcher, error) {
	if data.File == "" {
		return nil, nil
	}
	path, err := filepath.Abs(data.File)
	if err != nil {
		return nil, err
	}

	snap, err := service.LoadFile(ctx, path, data.Sheet)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %s as dataset %s (%d rows)", path, snap.ID, snap.Data.Rows())

	if !data.Watch {
		return nil, nil
	}
	w, err := watcher.New(path,
		watcher.WithOnChange(func(changed string) {
			n, err := service.RefreshLocation(ctx, changed, data.Sheet)
			if err != nil {
				log.Printf("Failed to reload %s: %v", changed, err)
				return
			}
			log.Printf("Reloaded %d dataset(s) from %s", n, changed)
		}),
		watcher.WithOnError(func(err error) {
			log.Printf("Watch error on %s: %v", path, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	log.Printf("Watching %s for changes", path)
	return w, nil
}

// preloadRecords fetches RECORDS_URL when it is set
func preloadRecords(ctx context.Context, service *app.ScanService, sources config.SourcesConfig) error {
	if sources.RecordsURL == "" {
		return nil
	}
	source := api.DefaultRecordsSource(sources.RecordsURL)
	source.DataPath = sources.RecordsDataPath
	source.MaxBodyBytes = sources.RecordsMaxBytes
	if sources.RecordsToken != "" {
		source.AuthMethod = api.AuthBearer
		source.AuthToken = sources.RecordsToken
	}
	snap, err := service.LoadAPI(ctx, source)
	if err != nil {
		return err
	}
	log.Printf("Loaded records from %s as dataset %s (%d rows)", sources.RecordsURL, snap.ID, snap.Data.Rows())
	return nil
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	service := app.NewScanService(memory.NewSnapshotStore(appConfig.Cache.TTL), app.ServiceConfig{
		Analysis:    appConfig.Analysis.Profiling,
		Coercion:    appConfig.Analysis.Coercion,
		Concurrency: appConfig.Analysis.Concurrency,
		DB:          conn,
	})

	w, err := preloadFile(ctx, service, appConfig.Data)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", appConfig.Data.File, err)
	}
	if w != nil {
		defer w.Stop()
	}
	if err := preloadRecords(ctx, service, appConfig.Sources); err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)
	server := ui.NewServer(service, ui.WithMaxUpload(appConfig.Server.MaxUploadBytes))
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
