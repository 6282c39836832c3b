package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

const invalidBatchMessage = `Please provide an array of 1 to 10 locations (city names or zip codes) in the request body under the "locations" key.`

// Resolver is the part of weather.Service the routes need.
type Resolver interface {
	Resolve(ctx context.Context, locations []string) ([]weather.Outcome, error)
	CacheStats() weather.StatsSnapshot
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Everything under
// /api/v1 requires apiKey.
func RegisterRoutes(app *fiber.App, service Resolver, apiKey string) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Weather API is running!")
	})

	v1 := app.Group("/api/v1", APIKeyAuth(apiKey))

	v1.Post("/weather", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := c.BodyParser(&req); err != nil {
			return badBatch(c, "request body must be JSON")
		}

		locations, err := weather.ParseBatch(req.Locations)
		if err != nil {
			return batchError(c, err)
		}

		results, err := service.Resolve(c.UserContext(), locations)
		if err != nil {
			if errors.Is(err, weather.ErrInvalidBatch) {
				return batchError(c, err)
			}
			log.Printf("ERROR: [%s] error processing weather request: %v", requestIDOf(c), err)
			return fiber.NewError(fiber.StatusInternalServerError, internalErrorMessage)
		}

		return c.JSON(results)
	})

	v1.Get("/cache/stats", func(c *fiber.Ctx) error {
		return c.JSON(service.CacheStats())
	})
}

// weatherRequest is the POST /api/v1/weather body. Locations stays untyped so
// the validator can report element-level problems.
type weatherRequest struct {
	Locations any `json:"locations"`
}

func batchError(c *fiber.Ctx, err error) error {
	var ib *weather.InvalidBatchError
	if errors.As(err, &ib) {
		return badBatch(c, ib.Reason)
	}
	return badBatch(c, err.Error())
}

func badBatch(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": invalidBatchMessage,
		"reason":  reason,
	})
}
