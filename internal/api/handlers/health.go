package handlers

import (
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HealthHandler reports dependency health
type HealthHandler struct {
	service *service.HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *service.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthCheck handles GET /api/health
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.Check(c.UserContext()); err != nil {
		log.Warn().Err(err).Msg("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Success: false,
			Error: models.ErrorBody{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "Health check failed",
			},
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"message": "All systems operational",
	})
}
