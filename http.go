package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog/app/category"
	"catalog/app/item"
	"catalog/domain"
	"catalog/internal/middleware"
	"catalog/pkg/httperror"
	"catalog/pkg/metrics"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return handleWith(handler, bindRequest[R], fiber.StatusOK)
}

func handleWith[R Request, Res Response](handler HandlerInterface[R, Res], bind binder[R], status int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R
		if err := bind(c, &req); err != nil {
			return writeError(c, err)
		}

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.Status(status).JSON(res)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

type dependencies struct {
	items         item.Service
	categories    category.Service
	metrics       *metrics.Metrics
	checks        map[string]pinger
	maxImageBytes int64
}

func newApp(deps dependencies) *fiber.App {
	if deps.maxImageBytes <= 0 {
		deps.maxImageBytes = domain.DefaultMaxImageBytes
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    int(deps.maxImageBytes) + 1<<20,
		ErrorHandler: writeError,
	})

	app.Use(recover.New())
	app.Use(middleware.NewCorrelationMiddleware())
	app.Use(middleware.NewMetricsMiddleware(deps.metrics))

	app.Get("/health", healthHandler(deps.checks))
	app.Get("/metrics", adaptor.HTTPHandler(deps.metrics.Handler()))

	api := app.Group("/api/v1")

	items := api.Group("/items")
	items.Post("/", handleWith[item.CreateItemRequest, item.ItemResponse](
		item.NewCreateItemHandler(deps.items), bindCreateItem(deps.maxImageBytes), fiber.StatusCreated))
	items.Get("/", handle[item.GetItemsRequest, item.ItemsResponse](item.NewGetItemsHandler(deps.items)))
	items.Get("/search", handle[item.SearchItemsRequest, item.ItemsResponse](item.NewSearchItemsHandler(deps.items)))
	items.Get("/by-categories", handle[item.GetItemsByCategoriesRequest, item.ItemsResponse](item.NewGetItemsByCategoriesHandler(deps.items)))
	items.Get("/:id", handle[item.GetItemRequest, item.ItemResponse](item.NewGetItemHandler(deps.items)))
	items.Patch("/:id", handleWith[item.UpdateItemRequest, item.ItemResponse](
		item.NewUpdateItemHandler(deps.items), bindUpdateItem(deps.maxImageBytes), fiber.StatusOK))
	items.Delete("/:id", handle[item.DeleteItemRequest, item.DeleteItemResponse](item.NewDeleteItemHandler(deps.items)))

	categories := api.Group("/categories")
	categories.Post("/", handleWith[category.CreateCategoryRequest, category.CategoryResponse](
		category.NewCreateCategoryHandler(deps.categories), bindRequest[category.CreateCategoryRequest], fiber.StatusCreated))
	categories.Get("/", handle[category.GetCategoriesRequest, category.GetCategoriesResponse](category.NewGetCategoriesHandler(deps.categories)))
	categories.Get("/:id", handle[category.GetCategoryRequest, category.CategoryResponse](category.NewGetCategoryHandler(deps.categories)))
	categories.Patch("/:id", handleWith[category.UpdateCategoryRequest, category.CategoryResponse](
		category.NewUpdateCategoryHandler(deps.categories), bindUpdateCategory, fiber.StatusOK))
	categories.Delete("/:id", handle[category.DeleteCategoryRequest, category.DeleteCategoryResponse](category.NewDeleteCategoryHandler(deps.categories)))

	return app
}

func healthHandler(checks map[string]pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		results := fiber.Map{}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				zap.L().Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
				results[name] = "down"
				status = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "up"
		}

		state := "ok"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": state, "dependencies": results})
	}
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == fiber.StatusNoContent {
			return c.SendStatus(fiber.StatusNoContent)
		}

		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}

type redisPinger struct {
	client interface {
		Ping(ctx context.Context) *redis.StatusCmd
	}
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
