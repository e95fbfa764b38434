package taxonomy

import (
	"errors"

	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog taxonomy.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the taxonomy routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/taxonomy")
	group.Get("/resolve", h.HandleResolve)
	group.Get("/stats", h.HandleStats)
}

// resolveResponse is the wire shape of a breadcrumb resolution.
type resolveResponse struct {
	Found bool         `json:"found"`
	Step  MatchStep    `json:"step"`
	Node  *CatalogNode `json:"node,omitempty"`
}

// HandleResolve resolves a breadcrumb string to a catalog node.
// @Summary Resolve Breadcrumb
// @Description Resolve a breadcrumb path (segments joined by '/') to a catalog node.
// @Tags taxonomy
// @Accept json
// @Produce json
// @Param breadcrumb query string true "Breadcrumb path (e.g. 'Крепёж/Уголки')"
// @Success 200 {object} resolveResponse "Resolution result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /taxonomy/resolve [get]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	breadcrumb := c.Query("breadcrumb")

	res, err := h.service.ResolveValue(c.Context(), breadcrumb)
	if err != nil {
		var invalid *InvalidBreadcrumbError
		if errors.As(err, &invalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Breadcrumb resolution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(resolveResponse{
		Found: res.Found(),
		Step:  res.Step,
		Node:  res.Node,
	})
}

// HandleStats returns aggregate statistics of the catalog tree.
// @Summary Get Tree Statistics
// @Description Get aggregate statistics of the flattened catalog tree.
// @Tags taxonomy
// @Accept json
// @Produce json
// @Success 200 {object} TreeStats "Tree statistics"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /taxonomy/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	stats, err := h.service.Stats(c.Context())
	if err != nil {
		l.Error("Tree statistics failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(stats)
}
