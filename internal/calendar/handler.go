package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/profile"
)

// Handler handles HTTP requests for calendar lookups.
type Handler struct {
	service Service
}

// NewHandler creates a new calendar handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type yearResponse struct {
	Year  int      `json:"year"`
	Dates []string `json:"dates"`
	Count int      `json:"count"`
}

// Year handles GET /calendar. The year defaults to the current one.
func (h *Handler) Year(c echo.Context) error {
	year := time.Now().UTC().Year()
	if raw := c.QueryParam("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 9999 {
			return apperror.NewBadRequest("year must be a four-digit number")
		}
		year = n
	}

	set, err := h.service.Year(c.Request().Context(), profile.FromContext(c.Request().Context()), year)
	if err != nil {
		return err
	}

	dates := set.Dates()
	if dates == nil {
		dates = []string{}
	}

	return c.JSON(http.StatusOK, yearResponse{Year: year, Dates: dates, Count: set.Len()})
}
