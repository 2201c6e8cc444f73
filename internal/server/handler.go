package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/threadsnap/threadsnap/internal/extract"
	"github.com/threadsnap/threadsnap/internal/logger"
)

// maxBodyBytes caps the request body; a scrape request is a single URL.
const maxBodyBytes = 1 << 20

// ScrapeFunc runs the scrape-and-classify pipeline for one URL.
type ScrapeFunc func(ctx context.Context, url string) (extract.Result, error)

// Handler serves the scrape API. Validation failures never reach the
// pipeline.
type Handler struct {
	scrape         ScrapeFunc
	allowedOrigins []string
	validate       *validator.Validate
	started        time.Time
}

// NewHandler creates a handler around the pipeline function.
func NewHandler(scrape ScrapeFunc, allowedOrigins []string) *Handler {
	return &Handler{
		scrape:         scrape,
		allowedOrigins: allowedOrigins,
		validate:       validator.New(),
		started:        time.Now(),
	}
}

type scrapeRequest struct {
	URL string `json:"url" validate:"required"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// handleScrape implements POST /api/scrape.
func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a string 'url' field"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "'url' is required"})
		return
	}

	if !h.originAllowed(req.URL) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "url is not on an allow-listed domain"})
		return
	}

	logger.Info("scrape request", "url", req.URL)
	start := time.Now()

	result, err := h.scrape(r.Context(), req.URL)
	if err != nil {
		logger.Error("scrape failed", "url", req.URL, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "scrape failed",
			Details: err.Error(),
		})
		return
	}

	logger.Info("scrape complete",
		"url", req.URL,
		"title", result.Title,
		"videos", len(result.Videos),
		"images", len(result.Images),
		"zips", len(result.Zips),
		"duration", time.Since(start).Round(time.Millisecond))

	writeJSON(w, http.StatusOK, result)
}

// handleHealth implements GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Seconds(),
	})
}

// originAllowed checks the URL against the literal allow-list prefixes.
func (h *Handler) originAllowed(url string) bool {
	for _, prefix := range h.allowedOrigins {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
