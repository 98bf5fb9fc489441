package relay

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

const keepaliveInterval = 15 * time.Second

var tsPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// Server exposes the relay over HTTP: publish and subscribe for text
// events, image upload and listing, and a small state page.
type Server struct {
	store  *Store
	hub    *Hub
	logger *log.Logger
	http   *http.Server
}

// NewServer builds a relay server listening on addr, backed by store.
func NewServer(addr string, store *Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "hudd: ", log.LstdFlags)
	}
	s := &Server{
		store:  store,
		hub:    NewHub(),
		logger: logger,
	}
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	return s
}

// Routes returns the relay's router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/pub", s.handlePub)
	r.Post("/pub/{ts}", s.handlePubAt)
	r.Get("/sub", s.handleSub)
	r.Get("/sub/{ts}", s.handleSubAt)
	r.Post("/png/{filename}", s.handlePNGUpload)
	r.Get("/png", s.handlePNGList)
	r.Get("/png/{filename}", s.handlePNGGet)
	r.Get("/state", s.handleStatePage)
	r.Post("/state", s.handleStateReset)
	r.Post("/scrub/{node}", s.handleScrub)
	return r
}

// ListenAndServe runs the server until it fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("listening on %s, data in %s", s.http.Addr, s.store.BaseDir)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// readPlainText enforces the publish content rules: text/plain bodies in
// valid UTF-8. It writes the error response itself and reports ok=false.
func readPlainText(w http.ResponseWriter, r *http.Request) (string, bool) {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
	if contentType != "text/plain" {
		http.Error(w, "content-type must be text/plain", http.StatusUnsupportedMediaType)
		return "", false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return "", false
	}
	if !utf8.Valid(body) {
		http.Error(w, "text/plain must be utf-8", http.StatusBadRequest)
		return "", false
	}
	return string(body), true
}

func (s *Server) writeAck(w http.ResponseWriter, fields Fields) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, FormatKVLines(fields))
}

func (s *Server) handlePub(w http.ResponseWriter, r *http.Request) {
	text, ok := readPlainText(w, r)
	if !ok {
		return
	}
	ts, err := s.store.AppendText(text)
	if err != nil {
		s.logger.Printf("pub: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	s.hub.Notify()
	s.writeAck(w, Fields{{Key: "ok", Value: "true"}, {Key: "ts", Value: ts}})
}

func (s *Server) handlePubAt(w http.ResponseWriter, r *http.Request) {
	ts := chi.URLParam(r, "ts")
	if !tsPattern.MatchString(ts) {
		http.Error(w, "ts must be numeric unix timestamp", http.StatusBadRequest)
		return
	}
	text, ok := readPlainText(w, r)
	if !ok {
		return
	}
	if err := s.store.AppendTextAt(ts, text); err != nil {
		if err == ErrEventExists {
			http.Error(w, "event ts already exists", http.StatusConflict)
			return
		}
		s.logger.Printf("pub/%s: %v", ts, err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	s.hub.Notify()
	s.writeAck(w, Fields{{Key: "ok", Value: "true"}, {Key: "ts", Value: ts}})
}

// safeFilename rejects path traversal in upload names.
func safeFilename(name string) (string, error) {
	base := path.Base(name)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("invalid filename")
	}
	return base, nil
}

func (s *Server) handlePNGUpload(w http.ResponseWriter, r *http.Request) {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
	if contentType != "image/png" {
		http.Error(w, "content-type must be image/png", http.StatusUnsupportedMediaType)
		return
	}
	name, err := safeFilename(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}
	ts, err := s.store.AppendPNG(name, body)
	if err != nil {
		s.logger.Printf("png upload: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	s.hub.Notify()
	s.writeAck(w, Fields{
		{Key: "ok", Value: "true"},
		{Key: "ts", Value: ts},
		{Key: "filename", Value: name},
	})
}

func (s *Server) handlePNGList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.LatestPNGByNode()
	if err != nil {
		s.logger.Printf("png list: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, row := range rows {
		fmt.Fprintf(w, "%s %s %s\n", row.Node, row.TS, row.URL)
	}
}

func (s *Server) handlePNGGet(w http.ResponseWriter, r *http.Request) {
	name, err := safeFilename(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := s.store.ReadPNG(name)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *Server) handleScrub(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	removed, err := s.store.ScrubNode(node)
	if err != nil {
		s.logger.Printf("scrub %s: %v", node, err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><body><p>Scrubbed node %s. Removed %d PNG events.</p>"+
		"<p><a href='/state'>Back to /state</a></p></body></html>",
		html.EscapeString(node), removed)
}

func (s *Server) handleStatePage(w http.ResponseWriter, r *http.Request) {
	s.renderStatePage(w)
}

func (s *Server) handleStateReset(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ResetTextHistory(); err != nil {
		s.logger.Printf("state reset: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	// Fresh marker event so connected overlays see the reset.
	if _, err := s.store.AppendText("Restarted"); err != nil {
		s.logger.Printf("state reset marker: %v", err)
	}
	s.hub.Notify()
	s.renderStatePage(w)
}

func (s *Server) renderStatePage(w http.ResponseWriter) {
	rows, err := s.store.LatestPNGByNode()
	if err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	// Newest upload first.
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if rows[j].TS > rows[i].TS {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
	}

	var cards strings.Builder
	for _, row := range rows {
		url := html.EscapeString(row.URL)
		node := html.EscapeString(row.Node)
		fmt.Fprintf(&cards,
			"<div style='border:1px solid #ddd;border-radius:8px;padding:10px;margin:8px 0;'>"+
				"<div><b>ts:</b> %s <b>node:</b> %s <b>file:</b> %s</div>"+
				"<form method='post' action='/scrub/%s' style='margin-top:6px;'>"+
				"<button type='submit' style='padding:6px 10px;'>Scrub</button></form>"+
				"<div><a href='%s' target='_blank'>%s</a></div>"+
				"<img src='%s' style='max-width:100%%;height:auto;border:1px solid #ccc;margin-top:8px;' />"+
				"</div>",
			html.EscapeString(row.TS), node, html.EscapeString(row.Filename), node, url, url, url)
	}
	cardsHTML := cards.String()
	if cardsHTML == "" {
		cardsHTML = "<p>No PNG events yet.</p>"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>hudd state</title>
  <style>
    body { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; margin: 20px; }
    pre { background: #f6f8fa; padding: 12px; border-radius: 8px; overflow-x: auto; white-space: pre-wrap; }
  </style>
</head>
<body>
  <h1>hudd /state</h1>
  <form method="post" action="/state" style="margin-bottom:16px;">
    <button type="submit" style="padding:8px 12px;">Reset</button>
  </form>
  <h2>Uploads (%d)</h2>
  %s
</body>
</html>`, len(rows), cardsHTML)
}

func (s *Server) handleSub(w http.ResponseWriter, r *http.Request) {
	s.streamEvents(w, r, 0)
}

func (s *Server) handleSubAt(w http.ResponseWriter, r *http.Request) {
	tsParam := chi.URLParam(r, "ts")
	if !tsPattern.MatchString(tsParam) {
		http.Error(w, "ts must be numeric unix timestamp", http.StatusBadRequest)
		return
	}
	ts, err := strconv.ParseFloat(tsParam, 64)
	if err != nil {
		http.Error(w, "ts must be numeric unix timestamp", http.StatusBadRequest)
		return
	}
	s.streamEvents(w, r, ts)
}

// streamEvents replays text events after the cursor, then follows the log,
// emitting a comment keepalive on idle periods so proxies keep the
// connection open.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, cursor float64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		updated := s.hub.Updated()
		events, err := s.store.EventsAfter(cursor)
		if err != nil {
			s.logger.Printf("sub: %v", err)
			return
		}
		sentAny := false
		for _, ev := range events {
			if ev.TS > cursor {
				cursor = ev.TS
			}
			if ev.Payload.Get("type") != "text" {
				continue
			}
			id := ev.Payload.Get("ts")
			if id == "" {
				id = strconv.FormatFloat(ev.TS, 'f', 6, 64)
			}
			fmt.Fprintf(w, "id: %s\n", id)
			for _, line := range strings.Split(strings.TrimSuffix(FormatKVLines(ev.Payload), "\n"), "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			io.WriteString(w, "\n")
			sentAny = true
		}
		if sentAny {
			flusher.Flush()
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-updated:
		case <-time.After(keepaliveInterval):
			io.WriteString(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
