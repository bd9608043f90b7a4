package refdata

import "strings"

// Field identifies a logical Golden Copy column.
type Field int

const (
	FieldLEI Field = iota
	FieldName
	FieldCountry
	FieldEntityStatus
	FieldLEIStatus
	FieldRAID
	FieldRAEntity
	FieldRenewalDate

	numFields
)

// logicalNames are the fixed lowercase headers of the compact schema, in
// Field order. Compact is the format Compact itself writes, accepted back
// as input without any renaming step.
var logicalNames = [numFields]string{
	"lei", "name", "country", "entity_status",
	"lei_status", "ra_id", "ra_entity", "renewal_date",
}

func (f Field) String() string { return logicalNames[f] }

// compactMarkers is the header subset whose joint presence identifies a
// compact file. renewal_date is deliberately absent: it is optional in
// every schema variant.
var compactMarkers = []string{
	"lei", "name", "country", "entity_status", "lei_status", "ra_id", "ra_entity",
}

// candidateColumns lists, per logical field, the known source column
// names across Golden Copy releases, in priority order. Resolved once at
// header time into a fixed index mapping; never consulted in the row loop.
var candidateColumns = [numFields][]string{
	FieldLEI: {"LEI"},
	FieldName: {
		"Entity.LegalName",
		"Entity.LegalName.name",
	},
	FieldCountry: {
		"Entity.LegalAddress.Country",
		"Entity.HeadquartersAddress.Country",
	},
	FieldEntityStatus: {
		"Entity.EntityStatus",
	},
	FieldLEIStatus: {
		"Registration.RegistrationStatus",
	},
	FieldRAID: {
		"Registration.RegistrationAuthorityID",
		"Entity.RegistrationAuthority.RegistrationAuthorityID",
	},
	FieldRAEntity: {
		"Registration.RegistrationAuthorityEntityID",
		"Entity.RegistrationAuthority.RegistrationAuthorityEntityID",
	},
	FieldRenewalDate: {
		"Registration.NextRenewalDate",
	},
}

// schemaMap holds, per logical field, the source column index (-1 when
// the column is absent from this file).
type schemaMap struct {
	cols    [numFields]int
	compact bool
	missing []Field
}

// resolveSchema maps a header row to logical fields. The compact variant
// is detected first via its marker set; otherwise each field tries its
// candidate names in priority order.
func resolveSchema(header []string) schemaMap {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	var sm schemaMap
	for f := range sm.cols {
		sm.cols[f] = -1
	}

	compact := true
	for _, marker := range compactMarkers {
		if _, ok := idx[marker]; !ok {
			compact = false
			break
		}
	}

	if compact {
		sm.compact = true
		for f := Field(0); f < numFields; f++ {
			if i, ok := idx[logicalNames[f]]; ok {
				sm.cols[f] = i
			}
		}
	} else {
		for f := Field(0); f < numFields; f++ {
			for _, name := range candidateColumns[f] {
				if i, ok := idx[name]; ok {
					sm.cols[f] = i
					break
				}
			}
		}
	}

	for f := Field(0); f < numFields; f++ {
		if sm.cols[f] < 0 {
			sm.missing = append(sm.missing, f)
		}
	}
	return sm
}

// record builds a Record from one source row using the resolved mapping.
// Absent or out-of-range columns yield empty fields.
func (sm *schemaMap) record(row []string) Record {
	get := func(f Field) string {
		i := sm.cols[f]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return Record{
		LEI:          get(FieldLEI),
		LegalName:    get(FieldName),
		Country:      get(FieldCountry),
		EntityStatus: get(FieldEntityStatus),
		LEIStatus:    get(FieldLEIStatus),
		RAID:         get(FieldRAID),
		RAEntityID:   get(FieldRAEntity),
		RenewalDate:  get(FieldRenewalDate),
	}
}
