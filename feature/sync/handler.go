package sync

import (
	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/run", h.HandleRun)
}

// HandleRun executes a full sync run and returns its report.
// @Summary Run Catalog Sync
// @Description Resolves every staged item's breadcrumb, creates missing categories, persists links and archives the snapshot. This operation may take a long time.
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} RunReport "Run Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering sync run")

	report, err := h.service.Run(c.Context())
	if err != nil {
		l.Error("Sync run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
