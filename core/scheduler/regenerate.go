// ABOUTME: Phase two of a refresh pass: regenerate queued decks one at a time
// ABOUTME: Persists fresh info, invokes the thumbnail generator and records the artifact

package scheduler

import (
	"context"
	"errors"
	"fmt"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/staleness"
)

// errSuperseded marks a queued deck whose cache entry changed after classification
var errSuperseded = errors.New("cache entry changed since classification")

// regenerate processes the work list in order, yielding before every item
func (s *Scheduler) regenerate(ctx context.Context, work []workItem, res *PassResult) error {
	for _, item := range work {
		if err := s.yielder.Yield(ctx); err != nil {
			return err
		}
		err := s.regenerateQueued(ctx, item)
		switch {
		case errors.Is(err, errSuperseded):
			res.Superseded++
		case err != nil:
			res.GenerationFailed++
		default:
			res.Regenerated++
		}
	}
	return nil
}

// regenerateQueued writes a deck queued by classification unless the entry
// moved on in the meantime, e.g. through ApplyDetail.
func (s *Scheduler) regenerateQueued(ctx context.Context, item workItem) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !item.base.matches(s.store.Info(item.id)) {
		s.logger.Debug("Deck changed during pass, dropping queued regeneration", map[string]interface{}{
			"deck_id": item.id,
		})
		return errSuperseded
	}
	return s.regenerateOne(ctx, item)
}

// regenerateOne writes the fresh info, then the artifact. A generator failure
// keeps the new info but leaves the thumbnail and its timestamp untouched.
// Callers hold writeMu.
func (s *Scheduler) regenerateOne(ctx context.Context, item workItem) error {
	now := s.now()

	info := domain.NewCachedDeckInfo(item.detail, item.verdict.Hash, now)
	if prev := s.store.Info(item.id); prev != nil {
		switch item.verdict.Reason {
		case staleness.ReasonMissingThumbnail, staleness.ReasonFresh:
			// content unchanged, so the TTL window keeps its start
			info.LastUpdated = prev.LastUpdated
		}
		info.LastThumbnailUpdate = prev.LastThumbnailUpdate
		info.LastChecked = prev.LastChecked
	}
	s.store.UpsertInfo(item.id, info)

	artifact, err := s.generate(ctx, item.detail)
	if err != nil {
		s.logger.Warn("Thumbnail generation failed", map[string]interface{}{
			"deck_id": item.id,
			"error":   err.Error(),
		})
		s.saveInfo(ctx)
		return err
	}

	value := ""
	if artifact != nil {
		value = *artifact
	}
	s.store.UpsertThumbnail(item.id, value)
	s.store.TouchThumbnail(item.id, now)
	s.saveInfo(ctx)
	s.saveThumbnails(ctx)

	s.logger.Debug("Deck thumbnail regenerated", map[string]interface{}{
		"deck_id": item.id,
		"reason":  string(item.verdict.Reason),
		"empty":   value == "",
	})
	return nil
}

// generate calls the generator, turning panics into errors
func (s *Scheduler) generate(ctx context.Context, detail *domain.DeckDetail) (artifact *string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			artifact = nil
			err = &coreerrors.GenerationError{DeckID: detail.ID, Cause: fmt.Errorf("panic recovered: %v", rec)}
		}
	}()

	artifact, err = s.generator.Generate(ctx, detail, detail.PlacementHints())
	if err != nil {
		return nil, &coreerrors.GenerationError{DeckID: detail.ID, Cause: err}
	}
	return artifact, nil
}

// ApplyDetail handles deck detail the caller already holds, e.g. after a save.
// The cooldown does not apply. Returns whether the deck was regenerated.
// It may run while a pass is in flight; queued items for the same deck are then dropped.
func (s *Scheduler) ApplyDetail(ctx context.Context, detail *domain.DeckDetail) (bool, error) {
	if detail == nil {
		return false, errors.New("deck detail cannot be nil")
	}
	if err := detail.Validate(); err != nil {
		return false, err
	}

	if !s.settings.ReadConfig(ctx).ThumbnailGenerationEnabled {
		return false, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	verdict := s.detector.Evaluate(detail.ID, detail, s.store)
	if !verdict.NeedsUpdate {
		return false, nil
	}

	if err := s.regenerateOne(ctx, workItem{id: detail.ID, detail: detail, verdict: verdict}); err != nil {
		return false, err
	}
	return true, nil
}
