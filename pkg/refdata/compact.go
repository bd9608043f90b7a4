package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// Compact rewrites the reference file at src into dst keeping only the
// logical columns, using the same chunked streaming as Load: the header
// goes out with the first chunk, later chunks append. Returns the number
// of rows written.
//
// A compact file built with ActiveOnly has permanently dropped every
// LAPSED / RETIRED / INACTIVE row. Validation mode needs those rows to
// report discordances on expired LEIs, so loading such a file for
// validation triggers an explicit coverage warning (see Table.HasInactive).
func Compact(ctx context.Context, src, dst string, opts Options) (int, error) {
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("création fichier compact: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(logicalNames[:]); err != nil {
		return 0, fmt.Errorf("écriture en-tête: %w", err)
	}

	written := 0
	err = stream(ctx, src, opts, func(schemaMap) {}, func(rec Record) error {
		row := []string{
			rec.LEI, rec.LegalName, rec.Country, rec.EntityStatus,
			rec.LEIStatus, rec.RAID, rec.RAEntityID, rec.RenewalDate,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("écriture ligne compacte: %w", err)
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("écriture fichier compact: %w", err)
	}
	if err := out.Close(); err != nil {
		return written, err
	}
	return written, nil
}
