package wizard

import "github.com/labstack/echo/v4"

// RegisterRoutes registers the stepped entry form routes on the given group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/diary/new", h.Show)
	g.PATCH("/diary/new", h.Edit)
	g.DELETE("/diary/new", h.Abandon)
	g.POST("/diary/new/step", h.Navigate)
	g.POST("/diary/new/save", h.SaveStep)
	g.POST("/diary/new/complete", h.RequestCompletion)
	g.POST("/diary/new/submit", h.Submit)
}
