package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPPublisherSubmit(t *testing.T) {
	var gotBody string
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := &HTTPPublisher{URL: srv.URL}
	if err := p.Submit(context.Background(), "  hello there  "); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotBody != "hello there" {
		t.Errorf("body = %q, want trimmed text", gotBody)
	}
	if gotType != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", gotType)
	}
}

func TestHTTPPublisherRejectsEmpty(t *testing.T) {
	p := &HTTPPublisher{URL: "http://unused.invalid"}
	if err := p.Submit(context.Background(), "   "); err == nil {
		t.Error("empty submit did not error")
	}
}

func TestHTTPPublisherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := &HTTPPublisher{URL: srv.URL}
	if err := p.Submit(context.Background(), "text"); err == nil {
		t.Error("4xx response did not error")
	}
}

func TestFileAppenderSubmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "_pub.txt")
	a := &FileAppender{Path: path}
	if err := a.Submit(context.Background(), "first"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := a.Submit(context.Background(), "second"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file = %q", data)
	}
}
