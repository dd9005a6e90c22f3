package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/config"
	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/stats"
)

// Shared caches keep editorial and digest responses for 12h and may serve
// them stale for another 24h while revalidating.
const sharedCacheControl = "public, s-maxage=43200, stale-while-revalidate=86400"

const maxHistoryBody = 64 << 10

// ContentService serves practice content. It never fails.
type ContentService interface {
	Articles(ctx context.Context, category string) []model.Article
	Editorial(ctx context.Context, category string) []model.Article
	Yesterday(ctx context.Context, category string) model.Digest
}

// HistoryStore persists synced history per user.
type HistoryStore interface {
	Insert(ctx context.Context, userID string, item model.HistoryItem) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryItem, error)
}

type handlers struct {
	content ContentService
	history HistoryStore
	log     *zap.Logger
}

func (h handlers) news(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.content.Articles(r.Context(), r.URL.Query().Get("category")))
}

func (h handlers) editorial(w http.ResponseWriter, r *http.Request) {
	articles := h.content.Editorial(r.Context(), r.URL.Query().Get("category"))
	w.Header().Set("Cache-Control", sharedCacheControl)
	writeJSON(w, http.StatusOK, articles)
}

func (h handlers) yesterday(w http.ResponseWriter, r *http.Request) {
	digest := h.content.Yesterday(r.Context(), r.URL.Query().Get("category"))
	w.Header().Set("Cache-Control", sharedCacheControl)
	writeJSON(w, http.StatusOK, digest)
}

func (h handlers) historyRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.uploadHistory(w, r)
		return
	}
	h.listHistory(w, r)
}

func (h handlers) uploadHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var item model.HistoryItem
	dec := json.NewDecoder(io.LimitReader(r.Body, maxHistoryBody))
	if err := dec.Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid history item")
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && key != item.ID {
		writeJSONError(w, http.StatusBadRequest, "idempotency key does not match item id")
		return
	}
	if err := config.ValidateStruct(item); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if item.DurationMs > item.TimeLimitMs {
		writeJSONError(w, http.StatusBadRequest, "duration exceeds time limit")
		return
	}
	// Metrics are always recomputed from the counts.
	wpm, cpm, acc := stats.SessionMetrics(item.Correct, item.Incorrect, item.DurationMs)
	item.WPM, item.CPM, item.Accuracy = wpm, cpm, acc*100

	created, err := h.history.Insert(r.Context(), userID, item)
	if err != nil {
		h.log.Error("history insert failed", zap.String("id", item.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": item.ID, "created": created})
}

func (h handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.history.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("history list failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
