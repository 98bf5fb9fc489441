// Package publish sends user-submitted text out of the overlay: to the
// relay in live mode, or appended to a local file in file mode.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Submitter accepts one line of user text.
type Submitter interface {
	Submit(ctx context.Context, text string) error
}

// HTTPPublisher posts submissions to the relay's publish endpoint as plain
// text.
type HTTPPublisher struct {
	URL string

	// Client defaults to one with a short timeout; submissions are fire
	// and forget and must not wedge the UI goroutine that spawned them.
	Client *http.Client
}

func (p *HTTPPublisher) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Submit posts text to the publish URL. Empty text is rejected locally.
func (p *HTTPPublisher) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("publish: empty text")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("publish: %s returned %s", p.URL, resp.Status)
	}
	return nil
}

// FileAppender appends each submission as one line to a local file,
// creating parent directories as needed.
type FileAppender struct {
	Path string
}

// Submit appends text plus a trailing newline to the file.
func (a *FileAppender) Submit(_ context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("publish: empty text")
	}
	if dir := filepath.Dir(a.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
