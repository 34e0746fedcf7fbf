package handlers

import (
	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"
	"github.com/HoonDongKang/daily-ranking-redis/internal/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

// GameHandler handles score submission and the daily ranking
type GameHandler struct {
	ranking   *service.RankingService
	history   *service.HistoryService
	hub       *websocket.Hub
	validator *validator.Validate
}

// NewGameHandler creates a new game handler. history and hub may be nil.
func NewGameHandler(ranking *service.RankingService, history *service.HistoryService, hub *websocket.Hub, validate *validator.Validate) *GameHandler {
	return &GameHandler{
		ranking:   ranking,
		history:   history,
		hub:       hub,
		validator: validate,
	}
}

// Submit handles POST /api/games
// @Summary Submit a timing result
// @Description diff is elapsed minus target time in milliseconds
// @Accept json
// @Produce json
// @Param request body models.SubmitRequest true "Game result"
// @Success 200 {object} models.SubmitResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/games [post]
func (h *GameHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmitRequest

	if err := c.BodyParser(&req); err != nil {
		log.Debug().Err(err).Msg("invalid game request body")
		return apperrors.ErrBadRequest
	}
	if err := h.validator.Struct(&req); err != nil {
		return apperrors.ErrBadRequest
	}

	result, err := h.ranking.Submit(c.UserContext(), req.Nickname, *req.Diff)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetRanking handles GET /api/games
// @Summary Today's top ranking
// @Produce json
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {array} models.RankingEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /api/games [get]
func (h *GameHandler) GetRanking(c *fiber.Ctx) error {
	ranking, err := h.ranking.Top(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(ranking)
}

// GetRecords handles GET /api/games/records/:nickname
// @Summary Archived results of a nickname
// @Produce json
// @Param nickname path string true "Nickname"
// @Param limit query int false "Number of records" default(50)
// @Success 200 {array} models.GameRecord
// @Failure 400 {object} models.ErrorResponse
// @Router /api/games/records/{nickname} [get]
func (h *GameHandler) GetRecords(c *fiber.Ctx) error {
	if h.history == nil {
		return fiber.ErrNotFound
	}

	records, err := h.history.Records(c.UserContext(), c.Params("nickname"), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

// HandleWebSocket streams ranking change notifications on /ws
func (h *GameHandler) HandleWebSocket(conn *fiberws.Conn) {
	websocket.ServeWS(h.hub, conn)
}
