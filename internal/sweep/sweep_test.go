package sweep

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"trisect/internal/catalog"
	"trisect/internal/probe"
	"trisect/internal/triple"
)

// stubProber classifies triples by name and tracks concurrency.
type stubProber struct {
	delay func(triple string) time.Duration
	fail  map[string]bool
	crash map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu     sync.Mutex
	probed []string
}

func (s *stubProber) Probe(ctx context.Context, tr string) (probe.Result, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxInFlight.Load()
		if cur <= max || s.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	if s.delay != nil {
		select {
		case <-time.After(s.delay(tr)):
		case <-ctx.Done():
			return probe.Result{}, ctx.Err()
		}
	}

	s.mu.Lock()
	s.probed = append(s.probed, tr)
	s.mu.Unlock()

	if s.fail[tr] {
		return probe.Result{}, errors.New("spawn failed")
	}
	if s.crash[tr] {
		return probe.Result{
			Triple:     tr,
			Outcome:    probe.Crashed,
			Diagnostic: []byte("#0 0xabc boom\n"),
		}, nil
	}
	return probe.Result{Triple: tr, Outcome: probe.Invalid}, nil
}

type memRecorder struct {
	mu      sync.Mutex
	triples []string
}

func (m *memRecorder) Record(tr string, diagnostic []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triples = append(m.triples, tr)
	return nil
}

func twoValueCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Architectures:    []string{"i386", ""},
		Vendors:          []string{"pc", ""},
		OperatingSystems: []string{"linux", ""},
		Environments:     []string{"gnu", ""},
	}
}

func TestRun_EveryTripleProbedOnce(t *testing.T) {
	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{}
	rec := &memRecorder{}

	stats, err := Run(context.Background(), gen, prober, rec, Config{Jobs: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Submitted != 16 || stats.Completed != 16 {
		t.Fatalf("stats = %+v, want 16 submitted and completed", stats)
	}

	want := []string{}
	g := triple.NewGenerator(twoValueCatalog())
	for {
		tr, ok := g.Next()
		if !ok {
			break
		}
		want = append(want, tr)
	}
	got := append([]string{}, prober.probed...)
	sort.Strings(want)
	sort.Strings(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("probed set mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RespectsConcurrencyCap(t *testing.T) {
	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{
		delay: func(string) time.Duration { return 5 * time.Millisecond },
	}

	_, err := Run(context.Background(), gen, prober, &memRecorder{}, Config{Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if max := prober.maxInFlight.Load(); max > 2 {
		t.Errorf("max in-flight = %d, want <= 2", max)
	}
}

func TestRun_MixedLatencies(t *testing.T) {
	// K=2 with one slow probe: the cap holds and all complete.
	c := &catalog.Catalog{
		Architectures:    []string{"a1", "a2", "a3", "a4", "a5"},
		Vendors:          []string{"v"},
		OperatingSystems: []string{"o"},
		Environments:     []string{"e"},
	}
	gen := triple.NewGenerator(c)
	prober := &stubProber{
		delay: func(tr string) time.Duration {
			if tr == "a1-v-o-e" {
				return 10 * time.Millisecond
			}
			return time.Millisecond
		},
	}

	stats, err := Run(context.Background(), gen, prober, &memRecorder{}, Config{Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Completed != 5 {
		t.Errorf("completed = %d, want 5", stats.Completed)
	}
	if max := prober.maxInFlight.Load(); max > 2 {
		t.Errorf("max in-flight = %d, want <= 2", max)
	}
}

func TestRun_CrashesForwardedToRecorder(t *testing.T) {
	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{
		crash: map[string]bool{"i386-pc-linux-gnu": true, "pc-gnu": true},
	}
	rec := &memRecorder{}

	stats, err := Run(context.Background(), gen, prober, rec, Config{Jobs: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Crashed != 2 {
		t.Errorf("crashed = %d, want 2", stats.Crashed)
	}
	if stats.Invalid != 14 {
		t.Errorf("invalid = %d, want 14", stats.Invalid)
	}

	got := append([]string{}, rec.triples...)
	sort.Strings(got)
	want := []string{"i386-pc-linux-gnu", "pc-gnu"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recorded crashes mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ProbeErrorAbortsRun(t *testing.T) {
	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{
		fail: map[string]bool{"i386-pc-gnu": true},
	}

	_, err := Run(context.Background(), gen, prober, &memRecorder{}, Config{Jobs: 2})
	if err == nil {
		t.Fatal("expected run to abort on probe infrastructure error")
	}
}

func TestRun_Limit(t *testing.T) {
	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{}

	stats, err := Run(context.Background(), gen, prober, &memRecorder{}, Config{Jobs: 4, Limit: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Submitted != 5 || stats.Completed != 5 {
		t.Errorf("stats = %+v, want 5 submitted and completed", stats)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := triple.NewGenerator(twoValueCatalog())
	prober := &stubProber{
		delay: func(string) time.Duration { return time.Millisecond },
	}

	if _, err := Run(ctx, gen, prober, &memRecorder{}, Config{Jobs: 2}); err == nil {
		t.Fatal("expected error from pre-cancelled context")
	}
}
