// ABOUTME: Content fingerprinting for decks using a 32-bit FNV-1a rolling hash
// ABOUTME: Order sensitive and allocation light; used only as a change detector

// Package fingerprint computes the content hash stored alongside cached deck info.
//
// The hash covers the canonical deck name and every card reference of the
// main, extra and side lists in order. It is a change-detection heuristic,
// not a cryptographic digest: collisions are possible and are bounded by
// the TTL fallback in the staleness package.
package fingerprint

import (
	"hash/fnv"
	"strconv"

	"deckthumb-cache/core/domain"
)

const separator = '|'

// Fingerprint returns the base-36 rendering of the deck's FNV-1a hash
func Fingerprint(deck *domain.DeckDetail) string {
	if deck == nil {
		return ""
	}

	h := fnv.New32a()
	buf := make([]byte, 0, 64)

	buf = append(buf, deck.CanonicalName()...)
	buf = append(buf, separator)
	h.Write(buf)

	for _, list := range [][]domain.CardRef{deck.Main, deck.Extra, deck.Side} {
		for _, ref := range list {
			buf = buf[:0]
			buf = strconv.AppendInt(buf, int64(ref.ID), 10)
			buf = append(buf, ':')
			buf = strconv.AppendInt(buf, int64(ref.InstanceID), 10)
			buf = append(buf, ':')
			buf = strconv.AppendInt(buf, int64(ref.Quantity), 10)
			buf = append(buf, ',')
			h.Write(buf)
		}
		h.Write([]byte{separator})
	}

	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
