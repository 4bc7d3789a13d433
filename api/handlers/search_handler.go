package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/app"
	"github.com/musifyyy/tunefetch/internal/domain"
)

// SearchHandler handles resolution requests
type SearchHandler struct {
	resolver *app.Resolver
	journal  domain.FetchJournal
	logger   *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(resolver *app.Resolver, journal domain.FetchJournal, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{resolver: resolver, journal: journal, logger: logger}
}

// SearchRequest represents a resolution request
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResponse carries the winning platform and its candidates.
type SearchResponse struct {
	RequestID  string             `json:"request_id"`
	Platform   domain.Platform    `json:"platform"`
	Candidates []domain.Candidate `json:"candidates"`
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := domain.NewFetchRecord(req.Query)
	record.MarkResolving()
	if err := h.journal.Create(record); err != nil {
		h.logger.Error("Failed to journal search", zap.Error(err))
	}

	platform, candidates, err := h.resolver.Resolve(c.Request.Context(), req.Query)
	if err != nil {
		record.MarkFailed(err)
		if uerr := h.journal.Update(record); uerr != nil {
			h.logger.Error("Failed to update journal", zap.Error(uerr))
		}
		if domain.IsExhausted(err) {
			// Every platform came up empty; to the user that is simply no
			// results, with the per-platform reasons attached for clients
			// that care.
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "no results found",
				"reasons":    exhaustionReasons(err),
				"request_id": record.ID,
			})
			return
		}
		h.logger.Error("Resolution failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	record.MarkResolved(platform)
	if err := h.journal.Update(record); err != nil {
		h.logger.Error("Failed to update journal", zap.Error(err))
	}

	c.JSON(http.StatusOK, SearchResponse{
		RequestID:  record.ID,
		Platform:   platform,
		Candidates: candidates,
	})
}

// exhaustionReasons flattens the per-platform failures for the response body.
func exhaustionReasons(err error) map[string]string {
	reasons := make(map[string]string)
	var exhausted *domain.ExhaustedError
	if !errors.As(err, &exhausted) {
		return reasons
	}
	for _, f := range exhausted.Failures {
		reasons[string(f.Platform)] = string(f.Kind)
	}
	return reasons
}
