// Package match implements the multi-tier resolution of input companies
// against the loaded reference table: exact registration-id lookup,
// approximate-id containment, fuzzy name+country, and the LEI validation
// mode with its discordance check.
package match

import (
	"fmt"

	"leimatch/pkg/refdata"
)

// Kind is the closed set of resolution results. The exporter switches
// over every kind; adding one here must be reflected there.
type Kind int

const (
	KindNotFound Kind = iota
	KindExactID
	KindApproxID
	KindApproxName
	KindLEIValid
	KindLEIDiscordant
	KindLEIUnknown
)

var kindLabels = map[Kind]string{
	KindNotFound:      "Non trouvé",
	KindExactID:       "Exact – N° registre",
	KindApproxID:      "Approx – N° registre",
	KindApproxName:    "Approx – Nom/Pays",
	KindLEIValid:      "LEI confirmé",
	KindLEIDiscordant: "LEI discordant",
	KindLEIUnknown:    "LEI inconnu",
}

func (k Kind) String() string { return kindLabels[k] }

// Outcome is the result of resolving one input row. Created by the
// Matcher, consumed by the exporter, never mutated in between.
type Outcome struct {
	Kind Kind

	// Row is the matched reference row index, -1 when nothing matched.
	Row int

	// Record points into the immutable reference table; nil when Row < 0.
	Record *refdata.Record

	// Score is the tier score (0-100): 100 for exact and direct-LEI
	// matches, the containment score for the approximate-id tier, the
	// name similarity for the name tier.
	Score int

	// NameScore is the auxiliary name similarity computed by the
	// approximate-id tier for display only; -1 when not computed.
	NameScore int

	// Discordance is the pipe-separated list of field disagreements for
	// the LEI validation kinds, empty otherwise.
	Discordance string
}

// ScoreLabel renders the score for export: empty for misses, the plain
// score for single-score kinds, a composite for the approximate-id tier
// when the auxiliary name score is available.
func (o Outcome) ScoreLabel() string {
	switch o.Kind {
	case KindNotFound, KindLEIUnknown:
		return ""
	case KindApproxID:
		if o.NameScore >= 0 {
			return fmt.Sprintf("%d (nom %d)", o.Score, o.NameScore)
		}
		return fmt.Sprintf("%d", o.Score)
	default:
		return fmt.Sprintf("%d", o.Score)
	}
}

func miss(kind Kind) Outcome {
	return Outcome{Kind: kind, Row: -1, NameScore: -1}
}
