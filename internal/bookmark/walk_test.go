package bookmark

import (
	"errors"
	"testing"
)

// place and container are small fixture constructors.
func place(uri string) *Entry {
	return &Entry{Type: KindPlace, URI: uri}
}

func container(children ...*Entry) *Entry {
	return &Entry{Type: KindContainer, Children: children}
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	root := container(
		place("a"),
		container(
			place("b"),
			container(place("c")),
			place("d"),
		),
		place("e"),
	)

	var visited []string
	err := Walk(root, func(_ []*Entry, p *Entry) error {
		visited = append(visited, p.URI)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	want := []string{"a", "b", "c", "d", "e"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}

func TestWalkPaths(t *testing.T) {
	t.Parallel()

	inner := container(place("deep"))
	root := container(inner)

	err := Walk(root, func(path []*Entry, p *Entry) error {
		if p.URI != "deep" {
			t.Fatalf("unexpected place %q", p.URI)
		}
		if len(path) != 2 {
			t.Fatalf("expected path of 2 ancestors, got %d", len(path))
		}
		if path[0] != root || path[1] != inner {
			t.Error("path does not list ancestors root-first")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestWalkUnknownKind(t *testing.T) {
	t.Parallel()

	root := container(
		place("ok"),
		&Entry{Type: "text/x-moz-place-separator"},
		place("never-visited"),
	)

	var visited []string
	err := Walk(root, func(_ []*Entry, p *Entry) error {
		visited = append(visited, p.URI)
		return nil
	})
	if !errors.Is(err, ErrUnknownEntryKind) {
		t.Fatalf("expected ErrUnknownEntryKind, got %v", err)
	}
	// The walk stops at the malformed entry.
	if len(visited) != 1 || visited[0] != "ok" {
		t.Errorf("expected walk to stop after first place, visited %v", visited)
	}
}

func TestWalkCallbackError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	root := container(place("a"), place("b"))

	calls := 0
	err := Walk(root, func(_ []*Entry, _ *Entry) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected walk to stop on first error, got %d calls", calls)
	}
}

func TestWalkLeafRoot(t *testing.T) {
	t.Parallel()

	root := place("only")
	var visited int
	err := Walk(root, func(path []*Entry, p *Entry) error {
		visited++
		if len(path) != 0 {
			t.Errorf("expected empty path for leaf root, got %d", len(path))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if visited != 1 {
		t.Errorf("expected 1 visit, got %d", visited)
	}
}
