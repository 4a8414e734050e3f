package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/fault"
)

var validate = validator.New()

// ErrorHandler maps fault kinds to HTTP statuses and renders the stable
// error body. Unclassified errors become a plain 500 without detail, so no
// internal cause or credential ever reaches the caller.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   true,
				"kind":    "http_error",
				"message": fiberErr.Message,
			})
		}

		kind, ok := fault.KindOf(err)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"kind":    "internal",
				"message": "internal server error",
			})
		}
		return c.Status(fault.StatusCode(err)).JSON(fiber.Map{
			"error":   true,
			"kind":    string(kind),
			"message": err.Error(),
		})
	}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *clima.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/current-weather", handleCurrent(service))
	v1.Post("/current-weather", handleCurrent(service))

	v1.Get("/daily-forecast", handleDaily(service))
	v1.Post("/daily-forecast", handleDaily(service))

	v1.Get("/historical-weather", handleHistorical(service))

	v1.Get("/observations", handleObservations(service))

	v1.Post("/forecast", handleForecast(service))
}

// currentRequest holds the current-weather parameters.
type currentRequest struct {
	PlaceName string `json:"place_name" validate:"required"`
}

func handleCurrent(service *clima.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req currentRequest
		if err := bind(c, &req, func() {
			req.PlaceName = c.Query("place_name")
		}); err != nil {
			return err
		}

		resp, err := service.Handle(c.Context(), clima.Request{
			View:      clima.ViewCurrent,
			PlaceName: req.PlaceName,
		})
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// dailyRequest holds the daily-forecast parameters.
type dailyRequest struct {
	PlaceName string `json:"place_name" validate:"required"`
	Days      int    `json:"days" validate:"required,min=1,max=16"`
	Render    bool   `json:"render"`
}

func handleDaily(service *clima.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dailyRequest
		if err := bind(c, &req, func() {
			req.PlaceName = c.Query("place_name")
			req.Days = c.QueryInt("days")
			req.Render = c.QueryBool("render")
		}); err != nil {
			return err
		}

		resp, err := service.Handle(c.Context(), clima.Request{
			View:      clima.ViewDaily,
			PlaceName: req.PlaceName,
			Days:      req.Days,
			Render:    req.Render,
		})
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// historicalRequest holds the historical-weather parameters.
type historicalRequest struct {
	PlaceName string `validate:"required"`
	Date      string `validate:"required"`
}

func handleHistorical(service *clima.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := historicalRequest{
			PlaceName: c.Query("place_name"),
			Date:      c.Query("date"),
		}
		if err := validate.Struct(req); err != nil {
			return fault.Wrap(fault.InvalidArgument, "invalid request", err)
		}

		resp, err := service.Handle(c.Context(), clima.Request{
			View:      clima.ViewHistorical,
			PlaceName: req.PlaceName,
			Date:      req.Date,
		})
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// observationsRequest holds the stored-observation query parameters.
type observationsRequest struct {
	Location string
	Limit    int `validate:"min=0,max=100"`
}

func handleObservations(service *clima.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := observationsRequest{
			Location: c.Query("location"),
			Limit:    c.QueryInt("limit", 7),
		}
		if err := validate.Struct(req); err != nil {
			return fault.Wrap(fault.InvalidArgument, "invalid request", err)
		}

		resp, err := service.Handle(c.Context(), clima.Request{
			View:     clima.ViewObservations,
			Location: req.Location,
			Days:     req.Limit,
		})
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// forecastRequest holds the model-forecast body.
type forecastRequest struct {
	Location string `json:"location" validate:"required"`
	Days     int    `json:"days" validate:"required,min=1"`
}

func handleForecast(service *clima.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req forecastRequest
		if err := c.BodyParser(&req); err != nil {
			return fault.Wrap(fault.InvalidArgument, "invalid request body", err)
		}
		if err := validate.Struct(req); err != nil {
			return fault.Wrap(fault.InvalidArgument, "invalid request", err)
		}

		resp, err := service.Handle(c.Context(), clima.Request{
			View:     clima.ViewForecast,
			Location: req.Location,
			Days:     req.Days,
		})
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// bind fills a request struct from the JSON body on POST or from query
// parameters otherwise, then validates it.
func bind(c *fiber.Ctx, req any, fromQuery func()) error {
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(req); err != nil {
			return fault.Wrap(fault.InvalidArgument, "invalid request body", err)
		}
	} else {
		fromQuery()
	}
	if err := validate.Struct(req); err != nil {
		return fault.Wrap(fault.InvalidArgument, "invalid request", err)
	}
	return nil
}
