package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/infrastructure/http/standard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *RemoteGenerator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := standard.NewStandardHTTPClient(5*time.Second, standard.WithMaxRetries(1))
	return NewRemoteGenerator(server.URL+"/render", client)
}

func sampleDeck() *domain.DeckDetail {
	return &domain.DeckDetail{
		ID:   7,
		Name: "Seven",
		Main: []domain.CardRef{{ID: 11, Quantity: 2}, {ID: 12, Quantity: 1}},
	}
}

func TestRemoteGenerator_JSONReply(t *testing.T) {
	var got renderRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/render", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"thumbnail":"data:image/png;base64,AAAA"}`))
	})

	deck := sampleDeck()
	artifact, err := gen.Generate(context.Background(), deck, deck.PlacementHints())
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, "data:image/png;base64,AAAA", *artifact)
	assert.Equal(t, 7, got.Deck.ID)
	assert.Equal(t, []int{11, 12}, got.PlacementHints)
}

func TestRemoteGenerator_ImageReply(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp; charset=binary")
		_, _ = w.Write([]byte{0x01, 0x02, 0x03})
	})

	artifact, err := gen.Generate(context.Background(), sampleDeck(), nil)
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, "data:image/webp;base64,AQID", *artifact)
}

func TestRemoteGenerator_NoContentIsEmptyDeck(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	artifact, err := gen.Generate(context.Background(), sampleDeck(), nil)
	require.NoError(t, err)
	assert.Nil(t, artifact)
}

func TestRemoteGenerator_EmptyThumbnailField(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"thumbnail":null}`))
	})

	artifact, err := gen.Generate(context.Background(), sampleDeck(), nil)
	require.NoError(t, err)
	assert.Nil(t, artifact)
}

func TestRemoteGenerator_ServiceError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad deck", http.StatusUnprocessableEntity)
	})

	artifact, err := gen.Generate(context.Background(), sampleDeck(), nil)
	assert.Nil(t, artifact)
	require.Error(t, err)
	assert.True(t, coreerrors.IsExternalAPI(err))
}
