// ABOUTME: HTTP deck fetcher reading deck lists and deck detail from the upstream deck API
// ABOUTME: Throttles requests with a token bucket so background passes stay polite

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/interfaces"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds upstream bodies
const maxResponseBytes = 16 << 20

// HTTPDeckFetcher implements interfaces.DeckFetcher over the deck API
type HTTPDeckFetcher struct {
	baseURL string
	client  interfaces.HTTPClient
	limiter *rate.Limiter
}

// NewHTTPDeckFetcher creates a fetcher for baseURL. requestsPerSecond <= 0 disables throttling.
func NewHTTPDeckFetcher(baseURL string, client interfaces.HTTPClient, requestsPerSecond float64, burst int) *HTTPDeckFetcher {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &HTTPDeckFetcher{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// FetchDeck returns the full detail of one deck. A 404 is a NotFoundError.
func (f *HTTPDeckFetcher) FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error) {
	var detail domain.DeckDetail
	if err := f.getJSON(ctx, f.baseURL+"/decks/"+strconv.Itoa(id), &detail); err != nil {
		var apiErr *coreerrors.ExternalAPIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, &coreerrors.NotFoundError{Resource: "deck", ID: strconv.Itoa(id)}
		}
		return nil, err
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	return &detail, nil
}

// ListDecks returns the ordered deck list
func (f *HTTPDeckFetcher) ListDecks(ctx context.Context) ([]domain.DeckSummary, error) {
	var decks []domain.DeckSummary
	if err := f.getJSON(ctx, f.baseURL+"/decks", &decks); err != nil {
		return nil, err
	}
	return decks, nil
}

func (f *HTTPDeckFetcher) getJSON(ctx context.Context, url string, dest interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return coreerrors.WrapError(err, "deck api request failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body(), 512))
		return &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    string(msg),
			API:        "deck api",
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body(), maxResponseBytes)).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode deck api response from %s: %w", url, err)
	}
	return nil
}
