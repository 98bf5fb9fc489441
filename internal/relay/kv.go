// Package relay implements the hudd event relay: a filesystem-backed event
// log with HTTP publish and subscribe endpoints.
package relay

import "strings"

// Field is one key/value pair of an event record. Records keep their field
// order on disk and on the wire.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered event record.
type Fields []Field

// Get returns the value for key, or "" when absent.
func (f Fields) Get(key string) string {
	for _, field := range f {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

// Set replaces the value for key, appending the field when new.
func (f Fields) Set(key, value string) Fields {
	for i, field := range f {
		if field.Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

// FormatKVLines encodes a record as "key: value" lines, one per field, with
// embedded newlines escaped as literal \n pairs. The result ends with a
// newline.
func FormatKVLines(fields Fields) string {
	var b strings.Builder
	for _, field := range fields {
		b.WriteString(field.Key)
		b.WriteString(": ")
		b.WriteString(strings.ReplaceAll(field.Value, "\n", `\n`))
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseKVLines decodes "key: value" lines back into an ordered record,
// reversing the newline escaping. Blank lines and lines without a colon are
// skipped; a repeated key keeps its last value.
func ParseKVLines(text string) Fields {
	var out Fields
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		key, value, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		value = strings.TrimLeft(value, " \t")
		out = out.Set(strings.TrimSpace(key), strings.ReplaceAll(value, `\n`, "\n"))
	}
	return out
}
