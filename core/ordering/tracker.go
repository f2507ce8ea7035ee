// ABOUTME: Order preservation tracking between the previous and current deck list
// ABOUTME: Answers whether everything that preceded a deck before still precedes it now

// Package ordering detects whether a deck's relative position context survived a list change.
package ordering

// IsSubsequence reports whether every element of candidate appears in reference
// in the same relative order. Runs in O(len(reference)) with two forward cursors.
func IsSubsequence(candidate, reference []int) bool {
	i := 0
	for j := 0; i < len(candidate) && j < len(reference); j++ {
		if candidate[i] == reference[j] {
			i++
		}
	}
	return i == len(candidate)
}

// Tracker compares the previous ordering snapshot against the current list.
// It is owned by a single pass and holds no shared state.
type Tracker struct {
	previous    []int
	current     []int
	previousPos map[int]int
	currentPos  map[int]int
}

// NewTracker builds a tracker for one pass
func NewTracker(previous, current []int) *Tracker {
	t := &Tracker{}
	t.load(previous, current)
	return t
}

func (t *Tracker) load(previous, current []int) {
	t.previous = append([]int(nil), previous...)
	t.current = append([]int(nil), current...)
	t.previousPos = indexOf(t.previous)
	t.currentPos = indexOf(t.current)
}

// Reset drops both orderings
func (t *Tracker) Reset() {
	t.load(nil, nil)
}

// Preserved reports whether every deck that preceded id in the previous snapshot,
// and still exists, also precedes id in the current list in the same relative order.
// Returns false when id is new to the snapshot or missing from the current list.
func (t *Tracker) Preserved(id int) bool {
	prevIdx, ok := t.previousPos[id]
	if !ok {
		return false
	}
	curIdx, ok := t.currentPos[id]
	if !ok {
		return false
	}

	before := make([]int, 0, prevIdx)
	for _, other := range t.previous[:prevIdx] {
		if _, exists := t.currentPos[other]; exists {
			before = append(before, other)
		}
	}

	return IsSubsequence(before, t.current[:curIdx])
}

// indexOf maps ids to their first position
func indexOf(ids []int) map[int]int {
	pos := make(map[int]int, len(ids))
	for i, id := range ids {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}
	return pos
}
