package relay

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the relay's event log on disk. Each event is a kv-lines file in
// the events directory named by its fractional unix timestamp; text and PNG
// payloads live beside it as blobs. Timestamp filenames sort by event order.
type Store struct {
	BaseDir string

	mu sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

// Event is one decoded event with its numeric timestamp key.
type Event struct {
	TS      float64
	Payload Fields
}

// ErrEventExists is reported when a caller-chosen timestamp collides with a
// stored event.
var ErrEventExists = fmt.Errorf("event ts already exists")

// NewStore creates a store rooted at baseDir and ensures its directories.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{BaseDir: baseDir, now: time.Now}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) eventsDir() string { return filepath.Join(s.BaseDir, "events") }
func (s *Store) textDir() string   { return filepath.Join(s.BaseDir, "blobs", "text") }
func (s *Store) pngDir() string    { return filepath.Join(s.BaseDir, "blobs", "png") }

func (s *Store) ensureDirs() error {
	for _, dir := range []string{s.eventsDir(), s.textDir(), s.pngDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("relay store: %w", err)
		}
	}
	return nil
}

// nowTS formats the current time as the store's timestamp key.
func (s *Store) nowTS() string {
	t := s.now()
	return fmt.Sprintf("%.6f", float64(t.UnixMicro())/1e6)
}

// freshTS picks an unused timestamp key. Callers must hold s.mu.
func (s *Store) freshTS() string {
	ts := s.nowTS()
	for {
		if _, err := os.Stat(filepath.Join(s.eventsDir(), ts)); os.IsNotExist(err) {
			return ts
		}
		ts = s.nowTS()
	}
}

func (s *Store) writeEvent(ts string, fields Fields) error {
	fields = fields.Set("ts", ts)
	path := filepath.Join(s.eventsDir(), ts)
	return os.WriteFile(path, []byte(FormatKVLines(fields)), 0o644)
}

// AppendText stores a text event at the next fresh timestamp and returns the
// assigned key.
func (s *Store) AppendText(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDirs(); err != nil {
		return "", err
	}
	ts := s.freshTS()
	return ts, s.appendTextAt(ts, text)
}

// AppendTextAt stores a text event under a caller-chosen timestamp key.
// ErrEventExists is returned when that key is taken.
func (s *Store) AppendTextAt(ts, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDirs(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(s.eventsDir(), ts)); err == nil {
		return ErrEventExists
	}
	return s.appendTextAt(ts, text)
}

func (s *Store) appendTextAt(ts, text string) error {
	blobName := ts + ".txt"
	if err := os.WriteFile(filepath.Join(s.textDir(), blobName), []byte(text), 0o644); err != nil {
		return fmt.Errorf("relay store: %w", err)
	}
	return s.writeEvent(ts, Fields{
		{Key: "type", Value: "text"},
		{Key: "text", Value: text},
		{Key: "blob", Value: "blobs/text/" + blobName},
	})
}

// AppendPNG stores an image blob under its filename and records a png event
// pointing at it. It returns the event's timestamp key.
func (s *Store) AppendPNG(filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDirs(); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.pngDir(), filename), data, 0o644); err != nil {
		return "", fmt.Errorf("relay store: %w", err)
	}
	ts := s.freshTS()
	err := s.writeEvent(ts, Fields{
		{Key: "type", Value: "png"},
		{Key: "filename", Value: filename},
		{Key: "url", Value: "/png/" + filename},
		{Key: "blob", Value: "blobs/png/" + filename},
	})
	return ts, err
}

// ReadPNG returns a stored image blob.
func (s *Store) ReadPNG(filename string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.pngDir(), filename))
}

// EventsAfter returns all events with timestamps strictly greater than
// cursor, in timestamp order. Files with non-numeric names or unreadable
// bodies are skipped.
func (s *Store) EventsAfter(cursor float64) ([]Event, error) {
	entries, err := os.ReadDir(s.eventsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("relay store: %w", err)
	}
	var events []Event
	for _, entry := range entries {
		ts, err := strconv.ParseFloat(entry.Name(), 64)
		if err != nil || ts <= cursor {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.eventsDir(), entry.Name()))
		if err != nil {
			continue
		}
		events = append(events, Event{TS: ts, Payload: ParseKVLines(string(data))})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].TS < events[j].TS })
	return events, nil
}

// PNGRow summarizes the newest image from one uploading machine.
type PNGRow struct {
	Node     string
	TS       string
	Filename string
	URL      string
}

// nodeFromFilename extracts the 12-hex-digit machine id from an upload
// filename, which is a version-1 UUID plus ".png".
func nodeFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	u, err := uuid.Parse(name)
	if err != nil || u.Version() != 1 {
		return ""
	}
	return hex.EncodeToString(u.NodeID())
}

// LatestPNGByNode returns the newest png event per uploading machine,
// sorted by node id.
func (s *Store) LatestPNGByNode() ([]PNGRow, error) {
	events, err := s.EventsAfter(0)
	if err != nil {
		return nil, err
	}
	latest := map[string]PNGRow{}
	for _, ev := range events {
		if ev.Payload.Get("type") != "png" {
			continue
		}
		filename := ev.Payload.Get("filename")
		if filename == "" {
			continue
		}
		node := nodeFromFilename(filename)
		if node == "" {
			continue
		}
		url := ev.Payload.Get("url")
		if url == "" {
			url = "/png/" + filename
		}
		latest[node] = PNGRow{Node: node, TS: ev.Payload.Get("ts"), Filename: filename, URL: url}
	}
	rows := make([]PNGRow, 0, len(latest))
	for _, row := range latest {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Node < rows[j].Node })
	return rows, nil
}

// ResetTextHistory deletes every text event and all text blobs, returning
// the number of events removed. PNG history is untouched.
func (s *Store) ResetTextHistory() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.EventsAfter(0)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, ev := range events {
		if ev.Payload.Get("type") != "text" {
			continue
		}
		ts := ev.Payload.Get("ts")
		if ts == "" {
			ts = strconv.FormatFloat(ev.TS, 'f', 6, 64)
		}
		if err := os.Remove(filepath.Join(s.eventsDir(), ts)); err == nil {
			removed++
		}
	}
	blobs, err := filepath.Glob(filepath.Join(s.textDir(), "*.txt"))
	if err == nil {
		for _, blob := range blobs {
			os.Remove(blob)
		}
	}
	return removed, nil
}

// ScrubNode removes every png event and blob uploaded by one machine. The
// node must be a 12-hex-digit id; anything else removes nothing.
func (s *Store) ScrubNode(node string) (int, error) {
	if len(node) != 12 || !isHex(node) {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.EventsAfter(0)
	if err != nil {
		return 0, err
	}
	removed := 0
	scrubbed := map[string]bool{}
	for _, ev := range events {
		if ev.Payload.Get("type") != "png" {
			continue
		}
		filename := ev.Payload.Get("filename")
		if filename == "" || !strings.EqualFold(nodeFromFilename(filename), node) {
			continue
		}
		ts := ev.Payload.Get("ts")
		if ts == "" {
			ts = strconv.FormatFloat(ev.TS, 'f', 6, 64)
		}
		if err := os.Remove(filepath.Join(s.eventsDir(), ts)); err == nil {
			removed++
		}
		scrubbed[filename] = true
	}
	for filename := range scrubbed {
		os.Remove(filepath.Join(s.pngDir(), filename))
	}
	return removed, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
