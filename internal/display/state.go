// Package display holds the shared text state a renderer polls.
//
// A single State value sits between the ingest side (stream client, file
// poller, publisher) and the render loop. Writers mutate it under a mutex
// and bump a version counter; the renderer compares versions on a timer and
// redraws only when something changed.
package display

import (
	"strings"
	"sync"
)

// MaxScrollback bounds the number of retained entries. Older entries are
// discarded first.
const MaxScrollback = 400

// Sentinel is what a capture session publishes when it starts, before any
// real text arrives. The renderer shows it verbatim but it carries no
// timestamp worth coloring.
const Sentinel = "Recording active."

// Entry is one line of scrollback: the display text plus the stamp string
// derived from the event id it arrived with.
type Entry struct {
	Stamp string
	Text  string
}

// State is the mutable display state shared between ingest goroutines and
// the renderer. The zero value is ready to use.
type State struct {
	mu         sync.Mutex
	latest     string
	scrollback []Entry
	version    uint64
}

// Snapshot is an immutable copy of the state at one version.
type Snapshot struct {
	Latest     string
	Scrollback []Entry
	Version    uint64
}

// Publish records text with an unknown arrival time.
func (s *State) Publish(text string) {
	s.PublishStamped(UnknownStamp, text)
}

// PublishStamped records text under the given stamp, appending to scrollback
// and replacing the latest text. Whitespace-only text becomes the Sentinel
// and an empty stamp becomes UnknownStamp, so every entry is renderable.
// The version increments exactly once.
func (s *State) PublishStamped(stamp, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = Sentinel
	}
	if stamp == "" {
		stamp = UnknownStamp
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = text
	s.scrollback = append(s.scrollback, Entry{Stamp: stamp, Text: text})
	if n := len(s.scrollback); n > MaxScrollback {
		s.scrollback = append(s.scrollback[:0], s.scrollback[n-MaxScrollback:]...)
	}
	s.version++
}

// Clear drops everything and returns the state to its initial shape. Used
// when a session resets. The version still advances so the renderer notices.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = ""
	s.scrollback = nil
	s.version++
}

// Version returns the current version without copying the state.
func (s *State) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot copies the current state. The returned scrollback slice is owned
// by the caller.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Latest:     s.latest,
		Scrollback: append([]Entry(nil), s.scrollback...),
		Version:    s.version,
	}
}
