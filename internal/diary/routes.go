package diary

import "github.com/labstack/echo/v4"

// RegisterRoutes registers the diary entry routes on the given group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/diary", h.List)
	g.POST("/diary", h.Create)
	g.GET("/diary/:id", h.Get)
	g.PUT("/diary/:id", h.Update)
	g.DELETE("/diary/:id", h.Delete)
}
