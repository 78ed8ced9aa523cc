package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDocumentShape marks a document that is valid JSON but holds a value of
// the wrong type somewhere. Such a document must not be overwritten.
var ErrDocumentShape = errors.New("document has values of unexpected type")

// Document is the whole persisted state. It is read and written as a single
// JSON blob.
type Document struct {
	Users      map[string]*Account `json:"users"`
	Sessions   []Session           `json:"sessions"`
	LastBackup string              `json:"__last_backup"`
}

// NewDocument returns an empty document with all top-level fields present.
func NewDocument() *Document {
	return &Document{Users: map[string]*Account{}, Sessions: []Session{}}
}

// Normalize fills in top-level fields missing from older documents.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = map[string]*Account{}
	}
	for email, acc := range d.Users {
		if acc == nil {
			d.Users[email] = &Account{}
		}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	for i := range d.Sessions {
		sess := &d.Sessions[i]
		if sess.VideoURL == "" {
			sess.VideoURL = sess.LegacyVideoURL
		}
		sess.LegacyVideoURL = ""
	}
}

// Encode renders the document the way it is stored: two-space indent,
// non-ASCII characters left as is.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeDocument parses a stored document. Empty or "null" input yields an
// empty document.
func DecodeDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	var parsed *Document
	if err := json.Unmarshal(data, &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrDocumentShape, err)
		}
		return nil, err
	}
	if parsed == nil {
		return doc, nil
	}
	parsed.Normalize()
	return parsed, nil
}

// Timestamp is a UTC instant that also reads the naive ISO-8601 form written
// by earlier versions of the document (no zone, microseconds). A value in any
// other form is kept verbatim and written back unchanged.
type Timestamp struct {
	time.Time
	raw json.RawMessage
}

var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		if len(t.raw) > 0 {
			return t.raw, nil
		}
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON never fails: unreadable values decode to the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time, t.raw = time.Time{}, nil
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(data) != "null" {
			t.raw = append(json.RawMessage(nil), data...)
		}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range legacyLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}
