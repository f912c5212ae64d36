// Package queue implements the queue traversal algorithm: a pure
// computation of the next or previous index to play given the queue
// length, the current position and the traversal modes. It never
// mutates the queue and never errors; "no further track" is an
// explicit second return value.
package queue

import (
	"math/rand"
	"time"

	"github.com/auralplayer/aural/internal/domain"
)

// Traversal computes queue navigation targets. The random source used
// for shuffle is injectable for deterministic tests.
type Traversal struct {
	rand *rand.Rand
}

// NewTraversal creates a traversal with a time-seeded random source.
func NewTraversal() *Traversal {
	return NewTraversalWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewTraversalWithRand creates a traversal with the given source.
func NewTraversalWithRand(r *rand.Rand) *Traversal {
	return &Traversal{rand: r}
}

// Next returns the index to play after current. The second return is
// false when there is no further track: the caller should stop, not
// wrap.
//
// Shuffle picks a uniformly random index; the current index is an
// acceptable target, there is no avoid-immediate-repeat guarantee.
// Sequential traversal advances by one and wraps to 0 only under
// repeat-all.
func (t *Traversal) Next(length, current int, shuffle bool, repeat domain.RepeatMode) (int, bool) {
	if length == 0 {
		return 0, false
	}
	if shuffle {
		return t.rand.Intn(length), true
	}

	candidate := current + 1
	if candidate < length {
		return candidate, true
	}
	if repeat == domain.RepeatAll {
		return 0, true
	}
	return 0, false
}

// Previous is the mirror of Next: it retreats by one and wraps to the
// last index only under repeat-all. Shuffle picks a random index
// exactly as Next does.
func (t *Traversal) Previous(length, current int, shuffle bool, repeat domain.RepeatMode) (int, bool) {
	if length == 0 {
		return 0, false
	}
	if shuffle {
		return t.rand.Intn(length), true
	}

	candidate := current - 1
	if candidate >= 0 {
		return candidate, true
	}
	if repeat == domain.RepeatAll {
		return length - 1, true
	}
	return 0, false
}
