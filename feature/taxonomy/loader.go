package taxonomy

import (
	"catalog-sync/core/pim"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Taxonomy feature.
func NewFeature(client pim.Client, rootID int, logger *zap.Logger) *Feature {
	svc := NewService(client, rootID, DefaultResolverConfig(), logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "taxonomy"
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

// Service exposes the taxonomy service for other features.
func (f *Feature) Service() *Service {
	return f.service
}
