package bookmark

import (
	"errors"
	"fmt"
)

// ErrUnknownEntryKind is returned when the tree contains an entry whose
// type is neither a container nor a place. This is a structural defect
// in the input: the walk stops immediately and the error propagates to
// the caller of the whole pass.
var ErrUnknownEntryKind = errors.New("unknown entry kind")

// WalkFunc is called once per place entry. path holds the ancestor
// containers from the root (inclusive) down to the place (exclusive),
// in order. The slice is reused between calls; callers that retain it
// must copy it first.
type WalkFunc func(path []*Entry, place *Entry) error

// Walk traverses the tree rooted at entry depth-first, visiting places
// in stored child order. It returns the first error from fn, or an
// error wrapping ErrUnknownEntryKind if a malformed entry is found.
func Walk(entry *Entry, fn WalkFunc) error {
	return walk(entry, nil, fn)
}

func walk(entry *Entry, path []*Entry, fn WalkFunc) error {
	switch entry.Type {
	case KindPlace:
		return fn(path, entry)
	case KindContainer:
		childPath := append(path, entry)
		for _, child := range entry.Children {
			if err := walk(child, childPath, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntryKind, entry.Type)
	}
}
