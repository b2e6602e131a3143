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
	cfg := config.Load("8082", "product.db")
	if err := applog.Init("product-service", cfg.LogFile); err != nil {
		log.Fatal(err)
	}
	defer applog.Sync()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedProducts(db); err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewProductDeps(db, cfg)

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

	h := deps.ProductHandler
	api := app.Group("/api/products", handlers.RequireUser(deps.Verifier))
	api.Post("/create", h.Create)
	api.Get("/by-ids", h.ByIDs)
	api.Post("/by-ids", h.ByIDs)
	api.Post("/update", h.Update)
	api.Post("/batch/decrease-stock", h.BatchDecrease)
	api.Post("/:id/decrease-stock", h.DecreaseStock)
	api.Post("/:id/increase-stock", h.IncreaseStock)
	api.Get("/:id", h.Get)
	api.Get("/", h.List)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	log.Fatal(app.Listen(":" + cfg.Port))
}
