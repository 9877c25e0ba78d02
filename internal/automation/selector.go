package automation

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// SelectionMode governs topic ordering.
type SelectionMode string

const (
	// ModeSequential rotates through the topic list in order, covering every
	// topic once before any repeat.
	ModeSequential SelectionMode = "sequential"
	// ModeRandom draws uniformly and independently; immediate repeats are
	// allowed.
	ModeRandom SelectionMode = "random"
)

// ParseSelectionMode accepts the config-file spelling of a mode.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch SelectionMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSequential, "":
		return ModeSequential, nil
	case ModeRandom:
		return ModeRandom, nil
	default:
		return "", fmt.Errorf("unknown topic selection mode %q", s)
	}
}

// SelectorState is the rotation cursor for sequential selection. The zero
// value is not ready; use NewSelectorState so the first sequential pick is
// topics[0].
type SelectorState struct {
	LastIndex int
}

func NewSelectorState() SelectorState { return SelectorState{LastIndex: -1} }

// NextTopic picks the next topic and returns the updated state.
//
// Sequential mode advances LastIndex modulo len(topics); random mode leaves
// the state untouched. The only possible error is an empty topic list.
func NextTopic(state SelectorState, topics []string, mode SelectionMode) (string, SelectorState, error) {
	if len(topics) == 0 {
		return "", state, ErrNoTopics
	}
	if mode == ModeRandom {
		return topics[rand.IntN(len(topics))], state, nil
	}
	next := (state.LastIndex + 1) % len(topics)
	state.LastIndex = next
	return topics[next], state, nil
}
