// ABOUTME: Phase one of a refresh pass: classify each deck as skipped, failed or queued
// ABOUTME: Applies cooldown, order preservation and early exit with jittered upstream fetches

package scheduler

import (
	"context"
	"fmt"
	"time"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/ordering"
	"deckthumb-cache/core/staleness"
)

// workItem is a deck queued for regeneration
type workItem struct {
	id      int
	detail  *domain.DeckDetail
	verdict staleness.Verdict
	base    entrySnapshot
}

// entrySnapshot captures the cache entry a classification was based on
type entrySnapshot struct {
	present       bool
	hash          string
	lastUpdated   time.Time
	lastThumbnail time.Time
}

func snapshotOf(info *domain.CachedDeckInfo) entrySnapshot {
	if info == nil {
		return entrySnapshot{}
	}
	snap := entrySnapshot{present: true, hash: info.Hash, lastUpdated: info.LastUpdated}
	if info.LastThumbnailUpdate != nil {
		snap.lastThumbnail = *info.LastThumbnailUpdate
	}
	return snap
}

// matches reports whether info is still the entry the snapshot was taken from
func (b entrySnapshot) matches(info *domain.CachedDeckInfo) bool {
	cur := snapshotOf(info)
	return b.present == cur.present &&
		b.hash == cur.hash &&
		b.lastUpdated.Equal(cur.lastUpdated) &&
		b.lastThumbnail.Equal(cur.lastThumbnail)
}

// classify walks the batch in order and returns the decks that need regeneration.
// checkpointed reports whether cooldown bookkeeping changed the info map.
func (s *Scheduler) classify(ctx context.Context, batch []domain.DeckSummary, tracker *ordering.Tracker, force bool, res *PassResult) (work []workItem, checkpointed bool, err error) {
	consecutiveSkipped := 0
	fetches := 0

	for _, deck := range batch {
		if err := ctx.Err(); err != nil {
			return work, checkpointed, err
		}
		res.Classified++
		now := s.now()

		cached := s.store.Info(deck.ID)
		if !force && s.detector.InCooldown(cached) {
			// LastChecked, not LastThumbnailUpdate: the cooldown must still end 24h after the last regeneration
			if s.store.MarkChecked(deck.ID, now) {
				checkpointed = true
			}
			res.Skipped++
			res.Cooldown++
			consecutiveSkipped++
			if consecutiveSkipped >= s.cfg.MaxConsecutiveSkips {
				res.EarlyExit = true
				break
			}
			continue
		}

		preserved := tracker.Preserved(deck.ID)
		needsUpdate := false
		var item workItem

		if !preserved || force || !s.detector.CachedFresh(deck.ID, s.store) {
			if fetches > 0 {
				if err := s.sleep(ctx, s.jitter()); err != nil {
					return work, checkpointed, err
				}
			}
			fetches++

			detail, err := s.fetch(ctx, deck.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return work, checkpointed, ctxErr
				}
				s.logger.Warn("Deck fetch failed, skipping for this pass", map[string]interface{}{
					"deck_id": deck.ID,
					"error":   err.Error(),
				})
				res.Failed++
				consecutiveSkipped = 0
				continue
			}
			res.Fetched++

			verdict := s.detector.Evaluate(deck.ID, detail, s.store)
			needsUpdate = verdict.NeedsUpdate || force
			item = workItem{id: deck.ID, detail: detail, verdict: verdict, base: snapshotOf(cached)}
		}

		if preserved && !needsUpdate {
			res.Skipped++
			consecutiveSkipped++
			if !force && consecutiveSkipped >= s.cfg.MaxConsecutiveSkips {
				res.EarlyExit = true
				break
			}
			continue
		}

		consecutiveSkipped = 0
		if needsUpdate {
			s.logger.Debug("Deck queued for regeneration", map[string]interface{}{
				"deck_id": deck.ID,
				"reason":  string(item.verdict.Reason),
			})
			work = append(work, item)
			res.Queued++
		}
	}

	return work, checkpointed, nil
}

// fetch calls the fetch collaborator, turning panics and missing decks into errors
func (s *Scheduler) fetch(ctx context.Context, id int) (detail *domain.DeckDetail, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			detail = nil
			err = &coreerrors.FetchError{DeckID: id, Cause: fmt.Errorf("panic recovered: %v", rec)}
		}
	}()

	detail, err = s.fetcher.FetchDeck(ctx, id)
	if err != nil {
		return nil, &coreerrors.FetchError{DeckID: id, Cause: err}
	}
	if detail == nil {
		return nil, &coreerrors.FetchError{DeckID: id, Cause: &coreerrors.NotFoundError{Resource: "deck", ID: fmt.Sprint(id)}}
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	if detail.ID != id {
		return nil, &coreerrors.FetchError{DeckID: id, Cause: fmt.Errorf("upstream returned deck %d", detail.ID)}
	}
	if err := detail.Validate(); err != nil {
		return nil, &coreerrors.FetchError{DeckID: id, Cause: err}
	}
	return detail, nil
}
