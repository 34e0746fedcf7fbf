package handlers

import (
	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// UserHandler handles nickname registration
type UserHandler struct {
	service   *service.NicknameService
	validator *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *service.NicknameService, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validate,
	}
}

// Register handles POST /api/users
// @Summary Reserve a nickname for today
// @Accept json
// @Produce json
// @Param request body models.NicknameRequest true "Nickname to reserve"
// @Success 201 {object} models.NicknameResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req models.NicknameRequest

	if err := c.BodyParser(&req); err != nil {
		log.Debug().Err(err).Msg("invalid nickname request body")
		return apperrors.ErrBadRequest
	}
	if err := h.validator.Struct(&req); err != nil {
		return apperrors.ErrBadRequest
	}

	nickname, err := h.service.Reserve(c.UserContext(), req.Nickname)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.NicknameResponse{
		Success: true,
		User:    nickname,
	})
}
