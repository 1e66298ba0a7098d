package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// JournalHandler handles symptom journal HTTP requests. Entries are private:
// every operation is scoped to the authenticated user.
type JournalHandler struct {
	journalRepository repositories.JournalRepository
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalRepo repositories.JournalRepository) *JournalHandler {
	return &JournalHandler{journalRepository: journalRepo}
}

// RegisterJournalRoutes registers journal routes
func (h *JournalHandler) RegisterJournalRoutes(g *echo.Group) {
	g.POST("/journal", h.CreateEntry)
	g.GET("/journal", h.ListEntries)
	g.GET("/journal/summary", h.GetSummary)
	g.PUT("/journal/:id", h.UpdateEntry)
	g.DELETE("/journal/:id", h.DeleteEntry)
}

// CreateEntry records a new journal entry for the authenticated user
func (h *JournalHandler) CreateEntry(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid entry date")
	}

	entry := &models.JournalEntry{
		UserID:    claims.UserID,
		EntryDate: entryDate,
		PainLevel: req.PainLevel,
		Symptoms:  strings.Join(req.Symptoms, ","),
		Notes:     req.Notes,
	}

	if err := h.journalRepository.CreateEntry(entry); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, entry)
}

// ListEntries lists the authenticated user's entries within a date range
// (default: last 30 days)
func (h *JournalHandler) ListEntries(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	from, to, err := dateRangeParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entries, err := h.journalRepository.GetEntriesByUser(claims.UserID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, entries)
}

// GetSummary returns per-day average pain levels for the chart view
func (h *JournalHandler) GetSummary(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	from, to, err := dateRangeParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	points, err := h.journalRepository.GetSummaryByUser(claims.UserID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, points)
}

// UpdateEntry edits one of the authenticated user's journal entries
func (h *JournalHandler) UpdateEntry(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.journalRepository.GetEntryByID(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Journal entry not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if entry.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this entry")
	}

	if req.PainLevel != nil {
		entry.PainLevel = *req.PainLevel
	}
	if req.Symptoms != nil {
		entry.Symptoms = strings.Join(req.Symptoms, ",")
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := h.journalRepository.UpdateEntry(entry); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry deletes one of the authenticated user's journal entries
func (h *JournalHandler) DeleteEntry(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	entry, err := h.journalRepository.GetEntryByID(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Journal entry not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if entry.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this entry")
	}

	if err := h.journalRepository.DeleteEntry(entry.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// dateRangeParams reads from/to query params as YYYY-MM-DD dates, defaulting
// to the last 30 days.
func dateRangeParams(c echo.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.QueryParam("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
