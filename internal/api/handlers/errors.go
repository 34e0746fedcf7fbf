package handlers

import (
	"errors"
	"strings"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

// ErrorHandler renders every failure in the common error envelope. Anything
// that is not a deliberate HTTPError or routing error becomes a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	body := errorBodyFor(c, err)
	return c.Status(body.status).JSON(models.ErrorResponse{
		Success: false,
		Error: models.ErrorBody{
			Code:    body.code,
			Message: body.message,
		},
	})
}

type errorBody struct {
	status  int
	code    string
	message string
}

func errorBodyFor(c *fiber.Ctx, err error) errorBody {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return errorBody{
			status:  fiberErr.Code,
			code:    statusCode(fiberErr.Code),
			message: fiberErr.Message,
		}
	}

	httpErr := apperrors.From(err)
	if httpErr == apperrors.ErrInternal {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}

	return errorBody{
		status:  httpErr.Status,
		code:    httpErr.Code,
		message: httpErr.Message,
	}
}

// statusCode turns a status into an error code, e.g. 404 -> NOT_FOUND
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_"))
}
