package calendar

import "github.com/labstack/echo/v4"

// RegisterRoutes registers the calendar routes on the given group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/diary/calendar", h.Year)
}
