// Package datasource reads overlay text from a local input file.
package datasource

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultOutputPath derives the submission file that pairs with an input
// file: a _pub.txt sibling in the same directory.
func DefaultOutputPath(inputPath string) string {
	return filepath.Join(filepath.Dir(inputPath), "_pub.txt")
}

// File polls a text file and reports its content when it changes.
type File struct {
	Path string
	last string
}

// Read returns the file's current text with any UTF-8 BOM stripped and
// surrounding whitespace trimmed.
func (f *File) Read() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.TrimSpace(string(data)), nil
}

// Poll re-reads the file and reports its text plus whether it differs from
// the previous poll. A failed read is skipped for this poll: the previous
// text is retained and no change is reported, so the transient missing-file
// window of a replace-by-rename write never blanks the overlay.
func (f *File) Poll() (text string, changed bool) {
	text, err := f.Read()
	if err != nil {
		return f.last, false
	}
	if text == f.last {
		return text, false
	}
	f.last = text
	return text, true
}
