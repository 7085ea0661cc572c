package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer собирает echo-приложение с маршрутами движка.
func NewServer(h *Handlers, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api", JWTMiddleware(jwtSecret))

	// Пользовательский контур.
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings", h.ListBookings)
	api.GET("/bookings/:id", h.GetBooking)
	api.DELETE("/bookings/:id", h.CancelBooking)
	api.GET("/bookings/:id/events", h.ListBookingEvents)

	// Контур исполнителя.
	api.POST("/assignments/:id/decision", h.ApplyDecision, RequireRole("professional"))
	api.GET("/assignments", h.ListAssignments, RequireRole("professional"))

	// Справочники (read-only, кэшируются).
	api.GET("/catalog/locations", h.ListLocations)
	api.GET("/catalog/categories", h.ListCategories)

	return e
}
