package sync

import (
	"catalog-sync/core/storage"
	"catalog-sync/feature/links"
	"catalog-sync/feature/taxonomy"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Sync feature.
func NewFeature(db *gorm.DB, taxonomySvc *taxonomy.Service, client storage.Client, bucket string, concurrency int, logger *zap.Logger) *Feature {
	var archive *Archive
	if client != nil {
		archive = NewArchive(client, bucket, logger)
	}
	store := links.NewStore(db, logger)
	svc := NewService(db, taxonomySvc, store, archive, concurrency, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the sync service for the CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}
