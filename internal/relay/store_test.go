package relay

import (
	"testing"
	"time"
)

// nodeUUID is a version-1 UUID whose node field is 112233445566.
const nodeUUID = "aaaaaaaa-aaaa-1aaa-8aaa-112233445566"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestAppendTextAndReplay(t *testing.T) {
	s := newTestStore(t)
	ts1, err := s.AppendText("first")
	if err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	time.Sleep(2 * time.Microsecond)
	if _, err := s.AppendText("second"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}

	events, err := s.EventsAfter(0)
	if err != nil {
		t.Fatalf("EventsAfter: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Payload.Get("text") != "first" || events[1].Payload.Get("text") != "second" {
		t.Errorf("events = %+v", events)
	}
	if events[0].Payload.Get("ts") != ts1 {
		t.Errorf("ts field = %q, want %q", events[0].Payload.Get("ts"), ts1)
	}
	if events[0].Payload.Get("type") != "text" {
		t.Errorf("type = %q", events[0].Payload.Get("type"))
	}
}

func TestEventsAfterCursorExcludes(t *testing.T) {
	s := newTestStore(t)
	if err := s.AppendTextAt("100.000000", "old"); err != nil {
		t.Fatalf("AppendTextAt: %v", err)
	}
	if err := s.AppendTextAt("200.000000", "new"); err != nil {
		t.Fatalf("AppendTextAt: %v", err)
	}
	events, err := s.EventsAfter(100.0)
	if err != nil {
		t.Fatalf("EventsAfter: %v", err)
	}
	if len(events) != 1 || events[0].Payload.Get("text") != "new" {
		t.Errorf("events = %+v", events)
	}
}

func TestAppendTextAtConflict(t *testing.T) {
	s := newTestStore(t)
	if err := s.AppendTextAt("123.456789", "one"); err != nil {
		t.Fatalf("AppendTextAt: %v", err)
	}
	if err := s.AppendTextAt("123.456789", "two"); err != ErrEventExists {
		t.Errorf("second write err = %v, want ErrEventExists", err)
	}
}

func TestAppendTextPreservesNewlines(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AppendText("a\nb"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	events, err := s.EventsAfter(0)
	if err != nil {
		t.Fatalf("EventsAfter: %v", err)
	}
	if got := events[0].Payload.Get("text"); got != "a\nb" {
		t.Errorf("text = %q, want embedded newline restored", got)
	}
}

func TestAppendAndReadPNG(t *testing.T) {
	s := newTestStore(t)
	data := []byte{0x89, 'P', 'N', 'G'}
	if _, err := s.AppendPNG("shot.png", data); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}
	got, err := s.ReadPNG("shot.png")
	if err != nil {
		t.Fatalf("ReadPNG: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("png bytes = %v", got)
	}
	events, _ := s.EventsAfter(0)
	if len(events) != 1 || events[0].Payload.Get("type") != "png" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Payload.Get("url") != "/png/shot.png" {
		t.Errorf("url = %q", events[0].Payload.Get("url"))
	}
}

func TestLatestPNGByNode(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AppendPNG(nodeUUID+".png", []byte("img1")); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}
	time.Sleep(2 * time.Microsecond)
	if _, err := s.AppendPNG(nodeUUID+".png", []byte("img2")); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}
	// Non-v1 names carry no node id and are skipped.
	if _, err := s.AppendPNG("random.png", []byte("img3")); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}

	rows, err := s.LatestPNGByNode()
	if err != nil {
		t.Fatalf("LatestPNGByNode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want one node", rows)
	}
	if rows[0].Node != "112233445566" {
		t.Errorf("node = %q", rows[0].Node)
	}
}

func TestResetTextHistoryKeepsPNGs(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AppendText("text event"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	time.Sleep(2 * time.Microsecond)
	if _, err := s.AppendPNG(nodeUUID+".png", []byte("img")); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}

	removed, err := s.ResetTextHistory()
	if err != nil {
		t.Fatalf("ResetTextHistory: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	events, _ := s.EventsAfter(0)
	if len(events) != 1 || events[0].Payload.Get("type") != "png" {
		t.Errorf("remaining events = %+v", events)
	}
}

func TestScrubNode(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AppendPNG(nodeUUID+".png", []byte("img")); err != nil {
		t.Fatalf("AppendPNG: %v", err)
	}

	if removed, _ := s.ScrubNode("not-a-node"); removed != 0 {
		t.Errorf("bad node removed %d events", removed)
	}
	removed, err := s.ScrubNode("112233445566")
	if err != nil {
		t.Fatalf("ScrubNode: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := s.ReadPNG(nodeUUID + ".png"); err == nil {
		t.Error("blob survived scrub")
	}
}
