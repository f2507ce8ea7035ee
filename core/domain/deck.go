// ABOUTME: Deck domain model covering card references, full deck detail and list summaries
// ABOUTME: Provides validation and card count helpers used by the cache engine

package domain

import (
	"errors"
	"fmt"
)

// CardRef references a single card slot inside one of a deck's lists
type CardRef struct {
	// ID is the card's catalogue identifier
	ID int `json:"id"`

	// InstanceID distinguishes two copies of the same card (art variant, print)
	InstanceID int `json:"instanceId"`

	// Quantity is the number of copies in the slot
	Quantity int `json:"quantity"`
}

// DeckDetail is the full deck composition returned by the upstream fetch collaborator
type DeckDetail struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName,omitempty"`
	Category     string    `json:"category,omitempty"`
	Main         []CardRef `json:"main"`
	Extra        []CardRef `json:"extra"`
	Side         []CardRef `json:"side"`
}

// DeckSummary is one entry of the caller's ordered deck list
type DeckSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// CardCount sums quantities per deck list
type CardCount struct {
	Main  int `json:"main"`
	Extra int `json:"extra"`
	Side  int `json:"side"`
}

// CanonicalName returns the name used for fingerprinting.
// Upstream renames only touch Name, so OriginalName wins when present.
func (d *DeckDetail) CanonicalName() string {
	if d.OriginalName != "" {
		return d.OriginalName
	}
	return d.Name
}

// CardCount computes the quantity sums of the three lists
func (d *DeckDetail) CardCount() CardCount {
	return CountCards(d.Main, d.Extra, d.Side)
}

// PlacementHints returns the card ids of the main list in order.
// Generators use them to pick which cards to show on the thumbnail.
func (d *DeckDetail) PlacementHints() []int {
	hints := make([]int, 0, len(d.Main))
	for _, ref := range d.Main {
		hints = append(hints, ref.ID)
	}
	return hints
}

// Validate checks the deck detail is usable
func (d *DeckDetail) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("invalid deck id: %d", d.ID)
	}
	for _, list := range [][]CardRef{d.Main, d.Extra, d.Side} {
		for _, ref := range list {
			if ref.Quantity < 0 {
				return errors.New("card quantity cannot be negative")
			}
		}
	}
	return nil
}

// CountCards sums the quantities of each list
func CountCards(main, extra, side []CardRef) CardCount {
	return CardCount{
		Main:  sumQuantities(main),
		Extra: sumQuantities(extra),
		Side:  sumQuantities(side),
	}
}

func sumQuantities(refs []CardRef) int {
	total := 0
	for _, ref := range refs {
		total += ref.Quantity
	}
	return total
}

// SummaryIDs extracts deck ids from an ordered summary list
func SummaryIDs(decks []DeckSummary) []int {
	ids := make([]int, 0, len(decks))
	for _, d := range decks {
		ids = append(ids, d.ID)
	}
	return ids
}
