package display

import (
	"fmt"
	"testing"
)

func TestPublishUpdatesLatestAndScrollback(t *testing.T) {
	var s State
	s.PublishStamped("10:00:00", "hello")
	s.PublishStamped("10:00:01", "world")

	snap := s.Snapshot()
	if snap.Latest != "world" {
		t.Errorf("latest = %q, want %q", snap.Latest, "world")
	}
	if len(snap.Scrollback) != 2 {
		t.Fatalf("scrollback len = %d, want 2", len(snap.Scrollback))
	}
	if snap.Scrollback[0].Text != "hello" || snap.Scrollback[1].Text != "world" {
		t.Errorf("scrollback = %+v", snap.Scrollback)
	}
}

func TestVersionIncrementsOncePerPublish(t *testing.T) {
	var s State
	if got := s.Version(); got != 0 {
		t.Fatalf("initial version = %d, want 0", got)
	}
	s.Publish("a")
	if got := s.Version(); got != 1 {
		t.Errorf("version after one publish = %d, want 1", got)
	}
	s.Publish("b")
	s.Clear()
	if got := s.Version(); got != 3 {
		t.Errorf("version after publish+clear = %d, want 3", got)
	}
}

func TestScrollbackBounded(t *testing.T) {
	var s State
	for i := 0; i < MaxScrollback+1; i++ {
		s.Publish(fmt.Sprintf("line %d", i))
	}
	snap := s.Snapshot()
	if len(snap.Scrollback) != MaxScrollback {
		t.Fatalf("scrollback len = %d, want %d", len(snap.Scrollback), MaxScrollback)
	}
	if snap.Scrollback[0].Text != "line 1" {
		t.Errorf("oldest = %q, want %q", snap.Scrollback[0].Text, "line 1")
	}
	if last := snap.Scrollback[MaxScrollback-1].Text; last != fmt.Sprintf("line %d", MaxScrollback) {
		t.Errorf("newest = %q", last)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	var s State
	s.Publish("untouched")
	snap := s.Snapshot()
	snap.Scrollback[0].Text = "mutated"
	if got := s.Snapshot().Scrollback[0].Text; got != "untouched" {
		t.Errorf("state text = %q, want %q", got, "untouched")
	}
}

func TestPublishSubstitutesSentinel(t *testing.T) {
	var s State
	s.PublishStamped("", "   \n\t ")
	snap := s.Snapshot()
	if snap.Latest != Sentinel {
		t.Errorf("latest = %q, want sentinel", snap.Latest)
	}
	if got := snap.Scrollback[0].Stamp; got != UnknownStamp {
		t.Errorf("stamp = %q, want %q", got, UnknownStamp)
	}
}

func TestClearResets(t *testing.T) {
	var s State
	s.Publish("a")
	s.Clear()
	snap := s.Snapshot()
	if snap.Latest != "" || len(snap.Scrollback) != 0 {
		t.Errorf("after clear: latest=%q scrollback=%d", snap.Latest, len(snap.Scrollback))
	}
}
