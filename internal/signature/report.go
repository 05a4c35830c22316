package signature

import (
	"fmt"
	"strings"
)

// Report is the analyzer's output artifact: one entry per distinct crash
// signature, in first-appearance order.
type Report struct {
	TotalRecords int           `json:"total_records"`
	Groups       []ReportGroup `json:"groups"`
}

// ReportGroup is the JSON form of one crash group.
type ReportGroup struct {
	Frames     []string `json:"frames"`
	Triple     string   `json:"triple"`
	Count      int      `json:"count"`
	Diagnostic string   `json:"diagnostic"`
}

// BuildReport assembles the artifact from grouped records.
func BuildReport(groups []Group, totalRecords int) *Report {
	r := &Report{TotalRecords: totalRecords, Groups: make([]ReportGroup, 0, len(groups))}
	for _, g := range groups {
		r.Groups = append(r.Groups, ReportGroup{
			Frames:     g.Signature,
			Triple:     g.Triple,
			Count:      g.Count,
			Diagnostic: string(g.Diagnostic),
		})
	}
	return r
}

// FormatReport renders the group summary for the console: one block per
// crash class with its representative triple.
func FormatReport(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d crash record(s), %d distinct signature(s)\n", r.TotalRecords, len(r.Groups))
	for i, g := range r.Groups {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, Signature(g.Frames).String())
		fmt.Fprintf(&b, "    triple: %q", g.Triple)
		if g.Count > 1 {
			fmt.Fprintf(&b, "  (+%d duplicate(s))", g.Count-1)
		}
		b.WriteString("\n")
	}
	return b.String()
}
