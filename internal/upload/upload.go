// Package upload ships PNG frames to the relay on a fixed interval.
//
// Frame names are version-1 UUIDs, so the relay can group uploads by the
// machine they came from via the UUID node field.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// DefaultInterval matches the capture cadence of the recording client.
const DefaultInterval = 5 * time.Second

// FrameSource produces the next PNG frame to upload. Returning a nil frame
// with a nil error means nothing to send this round.
type FrameSource interface {
	NextFrame(ctx context.Context) ([]byte, error)
}

// FileFrameSource reads frames from a file that some other process keeps
// overwriting. Unchanged content is not re-sent.
type FileFrameSource struct {
	Path string
	last []byte
}

// NextFrame returns the file's bytes when they changed since the previous
// call, nil otherwise. A missing file is not an error.
func (f *FileFrameSource) NextFrame(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 || bytes.Equal(data, f.last) {
		return nil, nil
	}
	f.last = data
	return data, nil
}

// Uploader posts frames from a source to the relay's PNG endpoint.
type Uploader struct {
	BaseURL  string
	Source   FrameSource
	Interval time.Duration

	// Client defaults to one with a moderate timeout.
	Client *http.Client
	// OnError, when set, receives upload failures; the loop keeps going.
	OnError func(err error)
}

func (u *Uploader) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (u *Uploader) interval() time.Duration {
	if u.Interval > 0 {
		return u.Interval
	}
	return DefaultInterval
}

func (u *Uploader) report(err error) {
	if u.OnError != nil {
		u.OnError(err)
	}
}

// Run uploads frames until ctx is cancelled. It always returns ctx.Err().
func (u *Uploader) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		frame, err := u.Source.NextFrame(ctx)
		if err != nil {
			u.report(fmt.Errorf("upload frame source: %w", err))
			continue
		}
		if frame == nil {
			continue
		}
		if err := u.UploadFrame(ctx, frame); err != nil {
			u.report(err)
		}
	}
}

// UploadFrame posts one frame under a fresh version-1 UUID name.
func (u *Uploader) UploadFrame(ctx context.Context, frame []byte) error {
	id, err := uuid.NewUUID()
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	url := fmt.Sprintf("%s/png/%s.png", u.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	resp, err := u.client().Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload: %s returned %s", url, resp.Status)
	}
	return nil
}
