package match

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"leimatch/pkg/normalize"
	"leimatch/pkg/refdata"
)

// Config holds the matching thresholds. Zero values are replaced by the
// defaults below.
type Config struct {
	// ActiveOnly restricts discovery matches to ACTIVE+ISSUED records.
	ActiveOnly bool

	// ApproxIDThreshold is the minimum containment score for the
	// approximate-id tier; 0 keeps the default, a negative value
	// disables the tier.
	ApproxIDThreshold int

	// NameThreshold is the minimum similarity for the name+country tier.
	NameThreshold int

	// DiscordNameThreshold is the looser name-agreement bar used by the
	// validation-mode discordance check, where the id or LEI already
	// anchors the match.
	DiscordNameThreshold int

	Logger *slog.Logger
}

const (
	DefaultApproxIDThreshold    = 88
	DefaultNameThreshold        = 80
	DefaultDiscordNameThreshold = 70
)

func (c Config) withDefaults() Config {
	if c.ApproxIDThreshold == 0 {
		c.ApproxIDThreshold = DefaultApproxIDThreshold
	}
	if c.NameThreshold == 0 {
		c.NameThreshold = DefaultNameThreshold
	}
	if c.DiscordNameThreshold == 0 {
		c.DiscordNameThreshold = DefaultDiscordNameThreshold
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// InputRow is one row of the user's spreadsheet, raw values as read.
type InputRow struct {
	RegistrationID string
	LegalName      string
	Country        string
	DeclaredLEI    string
}

// Matcher resolves input rows against the indexes. Stateless per row:
// safe for concurrent use once built.
type Matcher struct {
	cfg Config
	idx *Indexes

	coverageWarn sync.Once
}

// New builds a Matcher over prebuilt indexes.
func New(idx *Indexes, cfg Config) *Matcher {
	return &Matcher{cfg: cfg.withDefaults(), idx: idx}
}

// Resolve runs one input row through the tier cascade. A row with a
// declared LEI goes through validation mode, any other through discovery
// mode. Resolution never fails: an unresolvable row yields a NotFound or
// LEIUnknown outcome, not an error.
func (m *Matcher) Resolve(in InputRow) Outcome {
	if lei := strings.ToUpper(strings.TrimSpace(in.DeclaredLEI)); lei != "" {
		return m.validate(lei, in)
	}
	return m.discover(in, m.cfg.ActiveOnly)
}

// discover is the three-tier cascade: exact id, approximate id, then
// name+country. Each tier runs only when the previous one produced no
// acceptable result; a tier-1 hit disqualified by the active filter
// cascades exactly like an absent id.
func (m *Matcher) discover(in InputRow, activeOnly bool) Outcome {
	idKey := normalize.RegistrationID(in.RegistrationID)
	nameKey := normalize.Name(in.LegalName)
	iso := normalize.CountryToISO(in.Country)

	if idKey != "" {
		if rows, ok := m.idx.byID[idKey]; ok {
			row := rows[0]
			rec := m.idx.record(row)
			if !activeOnly || rec.ActiveIssued() {
				return Outcome{Kind: KindExactID, Row: row, Record: rec, Score: 100, NameScore: -1}
			}
		}
	}

	if idKey != "" && m.cfg.ApproxIDThreshold > 0 {
		if out, ok := m.approxID(idKey, nameKey, activeOnly); ok {
			return out
		}
	}

	if nameKey != "" && iso != "" {
		if out, ok := m.approxName(nameKey, iso, activeOnly); ok {
			return out
		}
	}

	return miss(KindNotFound)
}

// approxID looks for reference keys that contain the input key as a
// contiguous substring and are at most two characters longer, the
// typical shape of a source system having dropped a leading zero the
// registry kept. Score is 100*len(input)/len(candidate), rounded.
//
// idKeys is sorted by length then lexicographically and candidates only
// replace the best on a strictly higher score, so ties deterministically
// go to the shortest, then smallest key.
func (m *Matcher) approxID(idKey, nameKey string, activeOnly bool) (Outcome, bool) {
	bestScore := 0
	bestKey := ""
	for _, key := range m.idx.idKeys {
		if len(key) < len(idKey) {
			continue
		}
		if len(key) > len(idKey)+2 {
			break // keys are length-sorted, nothing longer can qualify
		}
		if !strings.Contains(key, idKey) {
			continue
		}
		score := int(math.Round(100 * float64(len(idKey)) / float64(len(key))))
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}
	if bestScore < m.cfg.ApproxIDThreshold || bestKey == "" {
		return Outcome{}, false
	}

	row := m.idx.byID[bestKey][0]
	rec := m.idx.record(row)
	if activeOnly && !rec.ActiveIssued() {
		return Outcome{}, false
	}

	// Auxiliary name similarity for display only; never gates the match.
	nameScore := -1
	if nameKey != "" {
		if refName := normalize.Name(rec.LegalName); refName != "" {
			nameScore = TokenSortRatio(nameKey, refName)
		}
	}
	return Outcome{Kind: KindApproxID, Row: row, Record: rec, Score: bestScore, NameScore: nameScore}, true
}

// approxName picks the single best name under the input's country by
// token-order-independent similarity. A best candidate disqualified by
// the active filter is a miss, not a reason to try the next candidate.
func (m *Matcher) approxName(nameKey, iso string, activeOnly bool) (Outcome, bool) {
	names := m.idx.byName[iso]
	if len(names) == 0 {
		return Outcome{}, false
	}

	bestScore := 0
	bestName := ""
	for _, candidate := range m.idx.nameKeys[iso] {
		if score := TokenSortRatio(nameKey, candidate); score > bestScore {
			bestScore = score
			bestName = candidate
		}
	}
	if bestScore < m.cfg.NameThreshold || bestName == "" {
		return Outcome{}, false
	}

	row := names[bestName][0]
	rec := m.idx.record(row)
	if activeOnly && !rec.ActiveIssued() {
		return Outcome{}, false
	}
	return Outcome{Kind: KindApproxName, Row: row, Record: rec, Score: bestScore, NameScore: -1}, true
}

// validate checks a declared LEI against the reference data. When the
// LEI is unknown, the entity is re-located through the discovery tiers
// with the active filter off, so LAPSED and RETIRED records surface in
// the discordance report instead of silently disappearing.
func (m *Matcher) validate(lei string, in InputRow) Outcome {
	m.warnCoverage()

	if row, ok := m.idx.byLEI[lei]; ok {
		rec := m.idx.record(row)
		desc, discordant := m.discordance(rec, in, lei)
		if !discordant {
			return Outcome{Kind: KindLEIValid, Row: row, Record: rec, Score: 100, NameScore: -1}
		}
		return Outcome{Kind: KindLEIDiscordant, Row: row, Record: rec, Score: 100, NameScore: -1, Discordance: desc}
	}

	fb := m.discover(in, false)
	if fb.Record == nil {
		return miss(KindLEIUnknown)
	}
	// The direct lookup failed, so the LEI clause is always present here.
	desc, _ := m.discordance(fb.Record, in, lei)
	return Outcome{
		Kind:        KindLEIDiscordant,
		Row:         fb.Row,
		Record:      fb.Record,
		Score:       fb.Score,
		NameScore:   fb.NameScore,
		Discordance: desc,
	}
}

// discordance compares a matched reference record against the input's
// raw values, one human-readable clause per disagreeing field.
func (m *Matcher) discordance(rec *refdata.Record, in InputRow, declaredLEI string) (string, bool) {
	var clauses []string

	recLEI := strings.ToUpper(strings.TrimSpace(rec.LEI))
	if declaredLEI != "" && recLEI != "" && declaredLEI != recLEI {
		clauses = append(clauses, fmt.Sprintf("LEI déclaré %s ≠ GLEIF %s", declaredLEI, recLEI))
	}

	idIn := normalize.RegistrationID(in.RegistrationID)
	idRef := normalize.RegistrationID(rec.RAEntityID)
	if idIn != "" && idRef != "" && idIn != idRef {
		clauses = append(clauses, fmt.Sprintf("N° registre %s ≠ GLEIF %s", idIn, idRef))
	}

	nameIn := normalize.Name(in.LegalName)
	nameRef := normalize.Name(rec.LegalName)
	if nameIn != "" && nameRef != "" {
		if score := TokenSortRatio(nameIn, nameRef); score < m.cfg.DiscordNameThreshold {
			clauses = append(clauses, fmt.Sprintf("Nom %q ≠ GLEIF %q (similarité %d%%)",
				strings.TrimSpace(in.LegalName), strings.TrimSpace(rec.LegalName), score))
		}
	}

	countryIn := normalize.CountryToISO(in.Country)
	countryRef := strings.ToUpper(strings.TrimSpace(rec.Country))
	if countryIn != "" && countryRef != "" && countryIn != countryRef {
		clauses = append(clauses, fmt.Sprintf("Pays %s ≠ GLEIF %s", countryIn, countryRef))
	}

	return strings.Join(clauses, " | "), len(clauses) > 0
}

// warnCoverage flags validation runs over a table that cannot contain
// expired LEIs: either loaded activeOnly, or rebuilt from a compact file
// that was itself produced with the filter on.
func (m *Matcher) warnCoverage() {
	t := m.idx.table
	if !t.ActiveOnly && !(t.FromCompact && !t.HasInactive) {
		return
	}
	m.coverageWarn.Do(func() {
		m.cfg.Logger.Warn("mode validation sur une base sans entités inactives: " +
			"les LEI expirés ne pourront pas être retrouvés (base chargée en " +
			"active-only ou compactée avec filtre)")
	})
}
