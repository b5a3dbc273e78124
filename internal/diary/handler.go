package diary

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/profile"
)

// Handler handles HTTP requests for diary entries.
type Handler struct {
	service  EntryService
	pageSize int
}

// NewHandler creates a new diary handler.
func NewHandler(service EntryService, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

// listResponse is the envelope for paginated entry lists.
type listResponse struct {
	Entries []EntryWithTags `json:"entries"`
	Page    Page            `json:"page"`
}

// List handles GET /diary. Filters, sort and page number come from query
// parameters; unrecognized sort values fall back to newest-first.
func (h *Handler) List(c echo.Context) error {
	profileID := profile.FromContext(c.Request().Context())

	opts := ListOptions{
		SearchQuery: c.QueryParam("search"),
		SortBy:      ParseSortOrder(c.QueryParam("sortBy")),
		DateFrom:    c.QueryParam("dateFrom"),
		DateTo:      c.QueryParam("dateTo"),
		Completion:  ParseCompletionFilter(c.QueryParam("completion")),
	}
	if raw := c.QueryParam("emotionTagId"); raw != "" {
		tagID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperror.NewBadRequest("emotionTagId must be an integer")
		}
		opts.EmotionTagID = &tagID
	}

	pageNum := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.NewBadRequest("page must be an integer")
		}
		pageNum = n
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.NewBadRequest("limit must be an integer")
		}
		limit = n
	}
	page := NewPage(pageNum, limit, h.pageSize)

	entries, page, err := h.service.List(c.Request().Context(), profileID, opts, page)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []EntryWithTags{}
	}

	return c.JSON(http.StatusOK, listResponse{Entries: entries, Page: page})
}

// Get handles GET /diary/:id.
func (h *Handler) Get(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}

	entry, err := h.service.Get(c.Request().Context(), id, profile.FromContext(c.Request().Context()))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entry)
}

// Create handles POST /diary.
func (h *Handler) Create(c echo.Context) error {
	var req EntryRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entry, err := h.service.Create(c.Request().Context(), profile.FromContext(c.Request().Context()), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, entry)
}

// Update handles PUT /diary/:id.
func (h *Handler) Update(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}

	var req EntryRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entry, err := h.service.Update(c.Request().Context(), id, profile.FromContext(c.Request().Context()), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entry)
}

// Delete handles DELETE /diary/:id.
func (h *Handler) Delete(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id, profile.FromContext(c.Request().Context())); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func entryID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewBadRequest("invalid entry id")
	}
	return id, nil
}
