// ABOUTME: Admin handlers for cached deck thumbnails and refresh triggers
// ABOUTME: Exposes cache lookups, explicit refresh passes and apply-on-save

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"deckthumb-cache/core/domain"
	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/workers"
	"deckthumb-cache/deckcache"
)

// maxDetailBytes bounds POSTed deck detail
const maxDetailBytes = 4 << 20

// DeckCache is the part of the cache client the handlers use
type DeckCache interface {
	Thumbnail(id int) (string, bool)
	Info(id int) *domain.CachedDeckInfo
	RefreshAsync(ctx context.Context, decks []domain.DeckSummary, opts ...deckcache.RefreshOption) (<-chan workers.PassOutcome, error)
	ApplyDetail(ctx context.Context, detail *domain.DeckDetail) (bool, error)
}

// DeckSource lists decks and loads deck detail from upstream
type DeckSource interface {
	ListDecks(ctx context.Context) ([]domain.DeckSummary, error)
	FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error)
}

// DeckHandler serves the admin deck endpoints
type DeckHandler struct {
	cache  DeckCache
	source DeckSource
	logger interfaces.Logger
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(cache DeckCache, source DeckSource, logger interfaces.Logger) *DeckHandler {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &DeckHandler{cache: cache, source: source, logger: logger}
}

// RegisterRoutes registers the deck routes on mux
func (h *DeckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /decks/{id}", h.GetInfo)
	mux.HandleFunc("GET /decks/{id}/thumbnail", h.GetThumbnail)
	mux.HandleFunc("POST /decks/{id}/apply", h.ApplyDeck)
	mux.HandleFunc("POST /refresh", h.Refresh)
}

// ThumbnailResponse is the body of GET /decks/{id}/thumbnail
type ThumbnailResponse struct {
	ID        int    `json:"id"`
	Thumbnail string `json:"thumbnail"`
	Empty     bool   `json:"empty"`
}

// ApplyResponse is the body of POST /decks/{id}/apply
type ApplyResponse struct {
	ID          int  `json:"id"`
	Regenerated bool `json:"regenerated"`
}

// RefreshResponse is the body of POST /refresh
type RefreshResponse struct {
	Queued int  `json:"queued"`
	Force  bool `json:"force"`
}

// Health reports liveness
func (h *DeckHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo returns the cached info of a deck
func (h *DeckHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := deckID(w, r)
	if !ok {
		return
	}
	info := h.cache.Info(id)
	if info == nil {
		writeError(w, deckcache.NewError(deckcache.ErrorTypeNotFound, "deck is not cached").WithContext("deck_id", id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetThumbnail returns the cached thumbnail of a deck
func (h *DeckHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := deckID(w, r)
	if !ok {
		return
	}
	artifact, found := h.cache.Thumbnail(id)
	if !found {
		writeError(w, deckcache.NewError(deckcache.ErrorTypeNotFound, "no thumbnail cached for deck").WithContext("deck_id", id))
		return
	}
	writeJSON(w, http.StatusOK, ThumbnailResponse{ID: id, Thumbnail: artifact, Empty: artifact == ""})
}

// ApplyDeck updates one deck right away. A JSON body is used as the deck
// detail; an empty body fetches the detail from upstream.
func (h *DeckHandler) ApplyDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := deckID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDetailBytes))
	if err != nil {
		writeError(w, deckcache.NewError(deckcache.ErrorTypeValidation, "failed to read request body").WithCause(err))
		return
	}

	var detail *domain.DeckDetail
	if len(body) > 0 {
		detail = &domain.DeckDetail{}
		if err := json.Unmarshal(body, detail); err != nil {
			writeError(w, deckcache.NewError(deckcache.ErrorTypeValidation, "invalid deck detail").WithCause(err))
			return
		}
		if detail.ID == 0 {
			detail.ID = id
		}
		if detail.ID != id {
			writeError(w, deckcache.NewError(deckcache.ErrorTypeValidation, "deck id does not match path"))
			return
		}
	} else {
		detail, err = h.source.FetchDeck(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	regenerated, err := h.cache.ApplyDetail(r.Context(), detail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApplyResponse{ID: id, Regenerated: regenerated})
}

// Refresh queues a pass over the upstream deck list.
// Query parameters: force=true, start and size select a batch.
func (h *DeckHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	force, _ := strconv.ParseBool(query.Get("force"))
	start, _ := strconv.Atoi(query.Get("start"))
	size, _ := strconv.Atoi(query.Get("size"))
	if start < 0 || size < 0 {
		writeError(w, deckcache.NewError(deckcache.ErrorTypeValidation, "start and size cannot be negative"))
		return
	}

	decks, err := h.source.ListDecks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	opts := []deckcache.RefreshOption{deckcache.WithBatch(start, size)}
	if force {
		opts = append(opts, deckcache.WithForce())
	}

	// the pass outlives the request
	done, err := h.cache.RefreshAsync(context.WithoutCancel(r.Context()), decks, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	go h.logOutcome(done, force)

	writeJSON(w, http.StatusAccepted, RefreshResponse{Queued: len(decks), Force: force})
}

func (h *DeckHandler) logOutcome(done <-chan workers.PassOutcome, force bool) {
	outcome := <-done
	if outcome.Err != nil {
		h.logger.Warn("Requested refresh pass did not finish", map[string]interface{}{
			"error": outcome.Err.Error(),
			"force": force,
		})
		return
	}
	h.logger.Info("Requested refresh pass finished", map[string]interface{}{
		"regenerated": outcome.Result.Regenerated,
		"force":       force,
		"duration":    outcome.Result.Duration.Round(time.Millisecond).String(),
	})
}

func deckID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, deckcache.NewError(deckcache.ErrorTypeValidation, "invalid deck id"))
		return 0, false
	}
	return id, true
}
