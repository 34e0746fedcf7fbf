package api

import (
	"github.com/HoonDongKang/daily-ranking-redis/internal/api/handlers"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"
	"github.com/HoonDongKang/daily-ranking-redis/internal/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the HTTP surface is built from.
// History, Hub and Gatherer are optional.
type Dependencies struct {
	Nicknames *service.NicknameService
	Ranking   *service.RankingService
	History   *service.HistoryService
	Health    *service.HealthService
	Hub       *websocket.Hub
	Gatherer  prometheus.Gatherer

	AllowOrigins string
	AccessLog    bool

	// Write endpoints are limited per client IP when RateLimitRPS > 0
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer builds the Fiber app with middleware and routes
func NewServer(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Daily Ranking Timer Game",
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler,
	})

	validate := validator.New()
	userHandler := handlers.NewUserHandler(deps.Nicknames, validate)
	gameHandler := handlers.NewGameHandler(deps.Ranking, deps.History, deps.Hub, validate)
	healthHandler := handlers.NewHealthHandler(deps.Health)

	// Middleware
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	allowOrigins := deps.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	writes := []fiber.Handler{}
	if deps.RateLimitRPS > 0 {
		writes = append(writes, NewIPRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst).Handler())
	}

	// Routes
	api := app.Group("/api")
	api.Post("/users", append(writes, userHandler.Register)...)
	api.Get("/games", gameHandler.GetRanking)
	api.Post("/games", append(writes, gameHandler.Submit)...)
	if deps.History != nil {
		api.Get("/games/records/:nickname", gameHandler.GetRecords)
	}
	api.Get("/health", healthHandler.HealthCheck)

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if fiberws.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", fiberws.New(gameHandler.HandleWebSocket))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Daily Ranking Timer Game API",
			"day":     deps.Ranking.Today(),
			"endpoints": []string{
				"POST /api/users",
				"GET /api/games",
				"POST /api/games",
				"GET /api/games/records/:nickname",
				"GET /api/health",
				"GET /metrics",
				"WS /ws",
			},
		})
	})

	return app
}
