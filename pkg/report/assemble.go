package report

import "leimatch/pkg/match"

// Headers are the enriched columns appended to each input row, in
// output order.
var Headers = []string{
	"LEI",
	"GLEIF_NomLegal",
	"GLEIF_Pays",
	"GLEIF_StatutSociete",
	"GLEIF_StatutLEI",
	"GLEIF_AutoriteRegistre",
	"GLEIF_NumRegistre",
	"GLEIF_DateRenouvellement",
	"TypeCorrespondance",
	"ScoreCorrespondance",
	"Discordances",
}

// Row renders the enriched cells for one outcome, aligned with Headers.
// Misses keep the reference cells empty but always carry the kind label.
func Row(o match.Outcome) []string {
	cells := make([]string, len(Headers))
	if rec := o.Record; rec != nil {
		cells[0] = rec.LEI
		cells[1] = rec.LegalName
		cells[2] = rec.Country
		cells[3] = rec.EntityStatus
		cells[4] = rec.LEIStatus
		cells[5] = rec.RAID
		cells[6] = rec.RAEntityID
		cells[7] = rec.RenewalDate
	}
	cells[8] = o.Kind.String()
	cells[9] = o.ScoreLabel()
	cells[10] = o.Discordance
	return cells
}
