package bookmark

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Entry kind discriminators as they appear in the "type" field of a
// Firefox bookmarks backup.
const (
	// KindContainer marks an entry that holds child entries.
	KindContainer = "text/x-moz-place-container"

	// KindPlace marks an entry that holds a single bookmarked URI.
	KindPlace = "text/x-moz-place"
)

// Entry is one node of the bookmark tree: either a container or a place.
//
// Children distinguishes "no children key" (nil) from "empty children
// list" (non-nil, zero length) so that a container whose every child was
// dropped still serializes with an explicit empty list, while a
// container that never had a children key stays that way.
//
// Extra holds every JSON field other than "type", "uri", and "children"
// as raw bytes. These fields (guid, id, index, title, dateAdded,
// lastModified, root, typeCode, ...) are copied verbatim into output.
type Entry struct {
	// Type is the kind discriminator. Values other than KindContainer
	// and KindPlace are rejected by Walk.
	Type string

	// URI is the bookmarked location. Only meaningful for KindPlace.
	URI string

	// Children are the ordered child entries. Only meaningful for
	// KindContainer. Order is semantically significant.
	Children []*Entry

	// Extra carries all remaining fields of the source object verbatim.
	Extra map[string]json.RawMessage
}

// IsContainer reports whether the entry is a container node.
func (e *Entry) IsContainer() bool { return e.Type == KindContainer }

// IsPlace reports whether the entry is a place (leaf) node.
func (e *Entry) IsPlace() bool { return e.Type == KindPlace }

// Title returns the entry's title metadata field, or "" if absent or
// not a JSON string.
func (e *Entry) Title() string {
	raw, ok := e.Extra["title"]
	if !ok {
		return ""
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return ""
	}
	return title
}

// UnmarshalJSON decodes a bookmark object, splitting the recognized
// fields out of the raw object and keeping everything else in Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode bookmark entry: %w", err)
	}

	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &e.Type); err != nil {
			return fmt.Errorf("decode entry type: %w", err)
		}
		delete(fields, "type")
	}
	if raw, ok := fields["uri"]; ok {
		if err := json.Unmarshal(raw, &e.URI); err != nil {
			return fmt.Errorf("decode entry uri: %w", err)
		}
		delete(fields, "uri")
	}
	if raw, ok := fields["children"]; ok {
		children := []*Entry{}
		if err := json.Unmarshal(raw, &children); err != nil {
			return fmt.Errorf("decode entry children: %w", err)
		}
		e.Children = children
		delete(fields, "children")
	}

	e.Extra = fields
	return nil
}

// MarshalJSON encodes the entry back into a bookmark object. Opaque
// metadata is written byte for byte as it was read. Keys are emitted in
// sorted order, which keeps output deterministic across runs.
func (e *Entry) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(e.Extra)+3)
	for k, v := range e.Extra {
		fields[k] = v
	}

	typeRaw, err := json.Marshal(e.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeRaw

	if e.IsPlace() {
		uriRaw, err := json.Marshal(e.URI)
		if err != nil {
			return nil, err
		}
		fields["uri"] = uriRaw
	}
	if e.Children != nil {
		childrenRaw, err := json.Marshal(e.Children)
		if err != nil {
			return nil, err
		}
		fields["children"] = childrenRaw
	}

	return json.Marshal(fields)
}

// ShallowCopy returns a copy of the entry that shares the Extra map and
// the child pointers but owns its own Children slice header. The
// rebuild step replaces the slice wholesale, so sharing the metadata
// map is safe as long as nobody mutates it.
func (e *Entry) ShallowCopy() *Entry {
	clone := *e
	return &clone
}

// EmptyRoot returns the canonical empty places root emitted when a
// filtering pass drops everything (or the input was empty). The
// timestamps are the current wall clock in microseconds, matching the
// dateAdded/lastModified convention of Firefox backups.
func EmptyRoot(now time.Time) *Entry {
	micros := strconv.FormatInt(now.UnixMicro(), 10)
	return &Entry{
		Type:     KindContainer,
		Children: []*Entry{},
		Extra: map[string]json.RawMessage{
			"guid":         json.RawMessage(`"root________"`),
			"id":           json.RawMessage(`1`),
			"index":        json.RawMessage(`0`),
			"root":         json.RawMessage(`"placesRoot"`),
			"title":        json.RawMessage(`""`),
			"typeCode":     json.RawMessage(`2`),
			"dateAdded":    json.RawMessage(micros),
			"lastModified": json.RawMessage(micros),
		},
	}
}
