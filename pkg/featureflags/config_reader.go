// ABOUTME: Adapts feature flags to the refresh engine's per-pass configuration reader
// ABOUTME: Maps background_refresh and thumbnail_generation onto the refresh switches

package featureflags

import (
	"context"

	"deckthumb-cache/core/domain"
)

// FlagConfigReader reads refresh switches from a flag manager
type FlagConfigReader struct {
	manager Manager
}

// NewFlagConfigReader creates a reader over manager. A nil manager reads
// whatever manager the pass context carries.
func NewFlagConfigReader(manager Manager) *FlagConfigReader {
	return &FlagConfigReader{manager: manager}
}

// ReadConfig returns the current switch state
func (r *FlagConfigReader) ReadConfig(ctx context.Context) domain.RefreshConfig {
	m := r.manager
	if m == nil {
		m = FromContext(ctx)
	}
	return domain.RefreshConfig{
		BackgroundRefreshEnabled:   m.IsEnabled(ctx, BackgroundRefresh),
		ThumbnailGenerationEnabled: m.IsEnabled(ctx, ThumbnailGeneration),
	}
}
