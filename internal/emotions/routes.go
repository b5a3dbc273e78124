package emotions

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all emotion tag routes on the given group.
// The profile middleware (applied globally) supplies the identity.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/emotions", h.List)
	g.GET("/emotions/defaults", h.ListDefaults)
	g.POST("/emotions", h.Create)
	g.DELETE("/emotions/:id", h.Delete)
}
