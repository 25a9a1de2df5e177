package fetch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/probe"
)

// stubProber returns canned outcomes and counts probes per URL.
// Outcomes for URLs listed in gate are held back until the gate channel
// is closed, which lets tests pin down blocking behavior.
type stubProber struct {
	mu       sync.Mutex
	calls    map[string]int
	outcomes map[string]probe.Outcome
	gate     map[string]chan struct{}
}

func newStubProber(outcomes map[string]probe.Outcome) *stubProber {
	return &stubProber{
		calls:    make(map[string]int),
		outcomes: outcomes,
		gate:     make(map[string]chan struct{}),
	}
}

func (s *stubProber) hold(url string) chan struct{} {
	ch := make(chan struct{})
	s.gate[url] = ch
	return ch
}

func (s *stubProber) Probe(_ context.Context, rawURL string) probe.Outcome {
	s.mu.Lock()
	s.calls[rawURL]++
	gate := s.gate[rawURL]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if outcome, ok := s.outcomes[rawURL]; ok {
		return outcome
	}
	return probe.Absent()
}

func (s *stubProber) callCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

func TestScheduleDedup(t *testing.T) {
	t.Parallel()

	prober := newStubProber(map[string]probe.Outcome{
		"https://a.test/": probe.Respond(200),
	})
	s := NewScheduler(prober, WithConcurrency(4))

	urls := []string{"https://a.test/", "https://b.test/", "https://a.test/", "https://a.test/"}
	table := s.Schedule(context.Background(), urls)

	if table.Len() != 2 {
		t.Fatalf("expected 2 distinct URLs, got %d", table.Len())
	}
	if err := table.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := prober.callCount("https://a.test/"); got != 1 {
		t.Errorf("expected exactly one probe for duplicated URL, got %d", got)
	}

	// Both lookups of the duplicated URL see the same outcome.
	ctx := context.Background()
	first, err := table.Get(ctx, "https://a.test/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := table.Get(ctx, "https://a.test/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first != second {
		t.Errorf("duplicate lookups disagree: %v vs %v", first, second)
	}
}

func TestScheduleCaseSensitiveKeys(t *testing.T) {
	t.Parallel()

	prober := newStubProber(nil)
	s := NewScheduler(prober, WithConcurrency(4))

	table := s.Schedule(context.Background(), []string{"HTTP://a.test/", "http://a.test/"})
	if table.Len() != 2 {
		t.Fatalf("URLs differing only in case must stay distinct, got %d entries", table.Len())
	}
}

func TestGetBlocksPerKeyOnly(t *testing.T) {
	t.Parallel()

	prober := newStubProber(map[string]probe.Outcome{
		"https://fast.test/": probe.Respond(200),
		"https://slow.test/": probe.Respond(503),
	})
	release := prober.hold("https://slow.test/")

	s := NewScheduler(prober, WithConcurrency(4))
	table := s.Schedule(context.Background(), []string{"https://slow.test/", "https://fast.test/"})

	// The fast key resolves while the slow probe is still held.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := table.Get(ctx, "https://fast.test/")
	if err != nil {
		t.Fatalf("fast key blocked on unrelated probe: %v", err)
	}
	if got.Status != 200 {
		t.Errorf("unexpected fast outcome %v", got)
	}

	close(release)
	got, err = table.Get(ctx, "https://slow.test/")
	if err != nil {
		t.Fatalf("slow key: %v", err)
	}
	if got.Status != 503 {
		t.Errorf("unexpected slow outcome %v", got)
	}
	if err := table.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestGetUnknownURL(t *testing.T) {
	t.Parallel()

	s := NewScheduler(newStubProber(nil))
	table := s.Schedule(context.Background(), []string{"https://a.test/"})

	_, err := table.Get(context.Background(), "https://never-scheduled.test/")
	if !errors.Is(err, ErrUnknownURL) {
		t.Fatalf("expected ErrUnknownURL, got %v", err)
	}
}

func TestGetHonorsContext(t *testing.T) {
	t.Parallel()

	prober := newStubProber(nil)
	release := prober.hold("https://held.test/")
	defer close(release)

	s := NewScheduler(prober, WithConcurrency(1))
	table := s.Schedule(context.Background(), []string{"https://held.test/"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := table.Get(ctx, "https://held.test/")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestScheduleDiagLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	prober := newStubProber(nil)
	s := NewScheduler(prober, WithConcurrency(4), WithDiag(diag.New(&buf)))

	table := s.Schedule(context.Background(), []string{
		"file:///tmp/x",
		"javascript:void(0)",
		"https://a.test/",
	})
	if err := table.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"FILE file:///tmp/x\n",
		"KEEP javascript:void(0)\n",
		"FETCH https://a.test/\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing diagnostic line %q in:\n%s", want, out)
		}
	}
}
