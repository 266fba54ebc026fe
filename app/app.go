package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"wavewall-mockups/app/controller"
	"wavewall-mockups/app/router"
	"wavewall-mockups/db"
	"wavewall-mockups/repository"
	"wavewall-mockups/service"
)

// App holds the wired application services. Everything is constructed
// explicitly, with no ambient singletons, so tests and the CLI can build
// isolated instances over temp directories.
type App struct {
	Router       chi.Router
	Templates    *service.TemplateManager
	Cache        *service.MockupCache
	Generator    *service.MaskGenerator
	PreGenerator *service.PreGenerator
	Compositor   *service.PSDCompositor
	Extractor    *service.TemplateExtractor
	Sheets       *service.SheetService

	database *sql.DB
}

// Initialize wires the application from environment configuration.
// The database and Drive sync are optional: leaving them unconfigured
// disables render history and remote template packs, nothing else.
func Initialize(ctx context.Context) (*App, error) {
	templatesDir := envDefault("TEMPLATES_DIR", "templates")
	cacheDir := envDefault("MOCKUP_CACHE_DIR", "cache/mockups")
	workers := envInt("BATCH_WORKERS", 4)

	cache, err := service.NewMockupCache(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mockup cache: %w", err)
	}

	templates := service.NewTemplateManager(templatesDir)
	if _, err := templates.LoadLibrary(false); err != nil {
		return nil, fmt.Errorf("failed to load template library: %w", err)
	}

	generator := service.NewMaskGenerator(templates, cache)

	// Optional render history.
	database, err := db.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	var history repository.RenderRecordRepositoryInterface
	if database != nil {
		history = repository.NewRenderRecordRepository(database)
		generator.WithHistory(history)
		logrus.Info("Render history enabled")
	}

	preGenerator := service.NewPreGenerator(generator, templates, workers)
	compositor := service.NewPSDCompositor(service.PSDExtractor{}, workers)
	extractor := service.NewTemplateExtractor(service.PSDExtractor{}, templates)

	sheets, err := service.NewSheetService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheet service: %w", err)
	}

	// Optional Drive template-pack sync.
	var sync service.SyncServiceInterface
	if credentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentials != "" {
		driveService, err := service.NewDriveService(credentials)
		if err != nil {
			logrus.WithError(err).Warn("Drive service unavailable, template sync disabled")
		} else {
			sync = service.NewSyncService(driveService, templates)
			logrus.Info("Template pack sync enabled")
		}
	}

	controllers := &router.Controllers{
		Mockup:   controller.NewMockupController(generator, preGenerator, sheets, history),
		Template: controller.NewTemplateController(templates, sync),
		Cache:    controller.NewCacheController(cache),
	}

	return &App{
		Router:       router.New(controllers),
		Templates:    templates,
		Cache:        cache,
		Generator:    generator,
		PreGenerator: preGenerator,
		Compositor:   compositor,
		Extractor:    extractor,
		Sheets:       sheets,
		database:     database,
	}, nil
}

// Close releases resources held by the application.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logrus.WithField(key, raw).Warn("Invalid integer environment value, using default")
		return fallback
	}
	return n
}
