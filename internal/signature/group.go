package signature

import (
	"strconv"

	"trisect/internal/results"
)

// Group is one crash class: every log record whose diagnostic produced the
// same Signature. The representative is the first record encountered in log
// order; later duplicates only bump Count.
type Group struct {
	Signature  Signature
	Triple     string
	Diagnostic []byte
	Count      int
}

// Options controls grouping policy.
type Options struct {
	// SplitUnmatched makes every empty-signature diagnostic its own
	// singleton group instead of collapsing them together. Off by default:
	// crashes with no recognizable frames share one group.
	SplitUnmatched bool
}

// GroupRecords groups log records by extracted signature, preserving the
// order in which distinct signatures first appear.
func GroupRecords(records []results.Record, opts Options) []Group {
	byKey := make(map[string]*Group)
	var order []string

	for i, rec := range records {
		sig := Extract(rec.Diagnostic)

		key := sig.Key()
		if opts.SplitUnmatched && len(sig) == 0 {
			// A key no real signature can collide with.
			key = "\x00unmatched\x00" + strconv.Itoa(i)
		}

		if g, ok := byKey[key]; ok {
			g.Count++
			continue
		}
		byKey[key] = &Group{
			Signature:  sig,
			Triple:     rec.Triple,
			Diagnostic: rec.Diagnostic,
			Count:      1,
		}
		order = append(order, key)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}
