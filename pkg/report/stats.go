package report

import (
	"fmt"
	"strings"

	"leimatch/pkg/match"
)

// statsOrder fixes the display order of the summary block.
var statsOrder = []match.Kind{
	match.KindExactID,
	match.KindApproxID,
	match.KindApproxName,
	match.KindLEIValid,
	match.KindLEIDiscordant,
	match.KindLEIUnknown,
	match.KindNotFound,
}

// Stats counts outcomes per kind for the end-of-run summary.
type Stats struct {
	Total  int
	Counts map[match.Kind]int
}

// Tally aggregates a run's outcomes.
func Tally(outs []match.Outcome) Stats {
	s := Stats{Total: len(outs), Counts: make(map[match.Kind]int, len(statsOrder))}
	for _, o := range outs {
		s.Counts[o.Kind]++
	}
	return s
}

// Summary renders the counts-and-percentages block printed at the end
// of a run. Kinds with zero rows are skipped.
func (s Stats) Summary() string {
	var b strings.Builder
	b.WriteString("Résultats du rapprochement:\n")
	for _, k := range statsOrder {
		n := s.Counts[k]
		if n == 0 {
			continue
		}
		pct := 0.0
		if s.Total > 0 {
			pct = 100 * float64(n) / float64(s.Total)
		}
		fmt.Fprintf(&b, "  %-22s: %d (%.1f%%)\n", k.String(), n, pct)
	}
	fmt.Fprintf(&b, "  %-22s: %d\n", "Total", s.Total)
	return b.String()
}
