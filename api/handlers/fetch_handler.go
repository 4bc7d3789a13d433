package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/app"
	"github.com/musifyyy/tunefetch/internal/domain"
)

// FetchHandler handles download requests and journal queries
type FetchHandler struct {
	pipeline *app.Pipeline
	journal  domain.FetchJournal
	logger   *zap.Logger
}

// NewFetchHandler creates a new fetch handler
func NewFetchHandler(pipeline *app.Pipeline, journal domain.FetchJournal, logger *zap.Logger) *FetchHandler {
	return &FetchHandler{pipeline: pipeline, journal: journal, logger: logger}
}

// FetchRequest identifies the candidate selected by the caller. RequestID,
// when set, continues the journal record a prior search opened instead of
// starting a fresh one.
type FetchRequest struct {
	RequestID string `json:"request_id"`
	Platform  string `json:"platform" binding:"required"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	SourceURL string `json:"source_url" binding:"required"`
	Query     string `json:"query"` // original query, for the journal
	Duration  int    `json:"duration_seconds"`
}

// Fetch handles POST /api/v1/fetch
func (h *FetchHandler) Fetch(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platform := domain.Platform(req.Platform)
	if !domain.ValidatePlatform(platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform"})
		return
	}

	candidate := domain.Candidate{
		Platform:  platform,
		ID:        req.ID,
		Title:     req.Title,
		Uploader:  req.Uploader,
		SourceURL: req.SourceURL,
		Duration:  time.Duration(req.Duration) * time.Second,
	}

	record, fresh := h.continueRecord(req)
	record.MarkFetching(candidate)

	var journalErr error
	if fresh {
		journalErr = h.journal.Create(record)
	} else {
		journalErr = h.journal.Update(record)
	}
	if journalErr != nil {
		h.logger.Error("Failed to journal fetch", zap.Error(journalErr))
	}

	result, err := h.pipeline.Fetch(c.Request.Context(), candidate)
	if err != nil {
		record.MarkFailed(err)
		if uerr := h.journal.Update(record); uerr != nil {
			h.logger.Error("Failed to update journal", zap.Error(uerr))
		}
		// A fetch failure is not a resolution failure: the caller should
		// try another candidate or platform.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "could not fetch this track, try another",
			"kind":       string(domain.KindOf(err)),
			"request_id": record.ID,
		})
		return
	}

	record.MarkCompleted(result)
	if err := h.journal.Update(record); err != nil {
		h.logger.Error("Failed to update journal", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": record.ID,
		"result":     result,
	})
}

// continueRecord looks up the journal record a prior search opened, falling
// back to a fresh one when the id is absent, unknown, or already settled.
func (h *FetchHandler) continueRecord(req FetchRequest) (*domain.FetchRecord, bool) {
	if req.RequestID != "" {
		if record, err := h.journal.FindByID(req.RequestID); err == nil && !record.IsTerminal() {
			return record, false
		}
	}
	return domain.NewFetchRecord(req.Query), true
}

// ListRequests handles GET /api/v1/requests
func (h *FetchHandler) ListRequests(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := h.journal.FindRecent(limit)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetRequest handles GET /api/v1/requests/:id
func (h *FetchHandler) GetRequest(c *gin.Context) {
	id := c.Param("id")

	record, err := h.journal.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}
