package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"commerce/internal/config"
	"commerce/internal/http/handlers"
	applog "commerce/internal/log"
	"commerce/internal/repos"
)

func main() {
	cfg := config.Load("8083", "orders.db")
	if err := applog.Init("order-service", cfg.LogFile); err != nil {
		log.Fatal(err)
	}
	defer applog.Sync()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewOrderDeps(db, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	h := deps.OrderHandler
	api := app.Group("/api/orders", handlers.RequireUser(deps.Verifier))
	api.Post("/create", h.AddToCart)
	api.Get("/clear-cart", h.ClearCart)
	api.Delete("/cart/product/:productId", h.RemoveProduct)
	api.Get("/by-customer-id/:customerId", h.ByCustomer)
	api.Post("/:id/checkout", h.Checkout)
	api.Get("/:id", h.Get)
	api.Get("/", h.List)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	log.Fatal(app.Listen(":" + cfg.Port))
}
