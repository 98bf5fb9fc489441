// Package eventstream consumes the hudd live-text feed.
//
// The wire format is a line-oriented event stream: an `id:` line opens an
// event, `data:` lines carry `key: value` payload fields, and a blank line
// terminates the event. The only recognized payload key is `text`, whose
// value escapes embedded newlines as literal `\n` pairs.
package eventstream

import "strings"

// Event is one parsed unit of incoming live text. ID is the server-assigned
// token (typically a fractional unix timestamp) and is used only for display.
type Event struct {
	ID   string
	Text string
}

// Parser incrementally decodes the event framing from arbitrary byte chunks.
// Partial lines at the end of a chunk are retained for the next Feed call.
//
// An event is flushed as soon as its `text` field arrives, without waiting
// for the blank-line terminator. Log-line granularity downstream depends on
// this: each `text` field produces exactly one event.
type Parser struct {
	buf     strings.Builder
	id      string
	text    string
	hasText bool
}

// Feed appends chunk to the internal buffer and returns all events completed
// by it, in arrival order. Events that never carry a `text` field are dropped.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf.Write(chunk)

	data := p.buf.String()
	var events []Event
	for {
		nl := strings.IndexByte(data, '\n')
		if nl < 0 {
			break
		}
		line := strings.TrimSuffix(data[:nl], "\r")
		data = data[nl+1:]
		events = p.consumeLine(line, events)
	}
	p.buf.Reset()
	p.buf.WriteString(data)
	return events
}

// consumeLine processes one complete line and appends any flushed event.
func (p *Parser) consumeLine(line string, events []Event) []Event {
	if line == "" {
		return p.flush(events)
	}
	if rest, ok := strings.CutPrefix(line, "id:"); ok {
		events = p.flush(events)
		p.id = strings.TrimSpace(rest)
		return events
	}
	rest, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return events
	}
	payload := strings.TrimSpace(rest)
	key, value, ok := strings.Cut(payload, ":")
	if !ok {
		return events
	}
	if strings.TrimSpace(key) != "text" {
		return events
	}
	p.text = strings.ReplaceAll(strings.TrimSpace(value), `\n`, "\n")
	p.hasText = true
	return p.flush(events)
}

// flush emits the pending event if it has text; a pending id without text is
// discarded either way.
func (p *Parser) flush(events []Event) []Event {
	if !p.hasText {
		p.id = ""
		return events
	}
	events = append(events, Event{ID: p.id, Text: p.text})
	p.id = ""
	p.text = ""
	p.hasText = false
	return events
}
