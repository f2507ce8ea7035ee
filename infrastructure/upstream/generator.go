// ABOUTME: Remote thumbnail generator posting deck detail to a render service
// ABOUTME: Accepts JSON or raw image replies and maps 204 to the empty-deck marker

package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/interfaces"
)

// renderRequest is the body posted to the render service
type renderRequest struct {
	Deck           *domain.DeckDetail `json:"deck"`
	PlacementHints []int              `json:"placementHints"`
}

// renderResponse is the JSON reply of the render service
type renderResponse struct {
	Thumbnail *string `json:"thumbnail"`
}

// RemoteGenerator implements interfaces.ThumbnailGenerator over HTTP
type RemoteGenerator struct {
	renderURL string
	client    interfaces.HTTPClient
}

// NewRemoteGenerator creates a generator posting to renderURL
func NewRemoteGenerator(renderURL string, client interfaces.HTTPClient) *RemoteGenerator {
	return &RemoteGenerator{renderURL: renderURL, client: client}
}

// Generate renders one deck. A nil artifact means the deck has nothing to show.
func (g *RemoteGenerator) Generate(ctx context.Context, deck *domain.DeckDetail, placementHints []int) (*string, error) {
	if placementHints == nil {
		placementHints = []int{}
	}
	payload, err := json.Marshal(renderRequest{Deck: deck, PlacementHints: placementHints})
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	resp, err := g.client.Post(ctx, g.renderURL, bytes.NewReader(payload))
	if err != nil {
		return nil, coreerrors.WrapError(err, "render request failed")
	}
	defer resp.Body().Close()

	switch {
	case resp.StatusCode() == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body(), 512))
		return nil, &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    string(msg),
			API:        "render service",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	contentType := resp.Header("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		artifact := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body)
		return &artifact, nil
	}

	var out renderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}
	if out.Thumbnail == nil || *out.Thumbnail == "" {
		return nil, nil
	}
	return out.Thumbnail, nil
}
