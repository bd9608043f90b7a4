package match

import (
	"sort"
	"strings"

	"leimatch/pkg/normalize"
	"leimatch/pkg/refdata"
)

// Indexes are the three read-only lookup structures built once over the
// reference table. They are scoped to one run and never persisted.
type Indexes struct {
	table *refdata.Table

	// byID maps normalized registration ids to the rows sharing that
	// key. Collisions are possible; lookups take the first-inserted row.
	byID map[string][]int

	// idKeys is byID's key set sorted by length then lexicographically,
	// giving the approximate-id scan a deterministic order: ties resolve
	// to the shortest, then lexicographically smallest key.
	idKeys []string

	// byLEI maps uppercased LEI to a single row. LEIs are expected
	// unique in the dataset; on duplicates the last row loaded wins.
	// That is an assumption about the upstream data, not a verified
	// invariant, and it is not silently corrected here.
	byLEI map[string]int

	// byName maps country code to normalized legal name to rows.
	byName map[string]map[string][]int

	// nameKeys holds per country the sorted normalized names, for
	// deterministic fuzzy scans.
	nameKeys map[string][]string
}

// BuildIndexes makes a single pass over the table. Rows with an empty
// normalized key simply produce no entry in the relevant index.
func BuildIndexes(t *refdata.Table) *Indexes {
	idx := &Indexes{
		table:    t,
		byID:     make(map[string][]int),
		byLEI:    make(map[string]int, len(t.Records)),
		byName:   make(map[string]map[string][]int),
		nameKeys: make(map[string][]string),
	}

	for i := range t.Records {
		rec := &t.Records[i]

		if key := normalize.RegistrationID(rec.RAEntityID); key != "" {
			idx.byID[key] = append(idx.byID[key], i)
		}
		if lei := strings.ToUpper(strings.TrimSpace(rec.LEI)); lei != "" {
			idx.byLEI[lei] = i
		}

		country := strings.ToUpper(strings.TrimSpace(rec.Country))
		name := normalize.Name(rec.LegalName)
		if country != "" && name != "" {
			names, ok := idx.byName[country]
			if !ok {
				names = make(map[string][]int)
				idx.byName[country] = names
			}
			names[name] = append(names[name], i)
		}
	}

	idx.idKeys = make([]string, 0, len(idx.byID))
	for key := range idx.byID {
		idx.idKeys = append(idx.idKeys, key)
	}
	sort.Slice(idx.idKeys, func(i, j int) bool {
		a, b := idx.idKeys[i], idx.idKeys[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	for country, names := range idx.byName {
		keys := make([]string, 0, len(names))
		for name := range names {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		idx.nameKeys[country] = keys
	}

	return idx
}

// IDEntries returns the number of distinct registration-id keys.
func (idx *Indexes) IDEntries() int { return len(idx.byID) }

// NameEntries returns the number of distinct (country, name) keys.
func (idx *Indexes) NameEntries() int {
	total := 0
	for _, names := range idx.byName {
		total += len(names)
	}
	return total
}

func (idx *Indexes) record(row int) *refdata.Record {
	return &idx.table.Records[row]
}
