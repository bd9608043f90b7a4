package refdata

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultChunkSize is the number of source rows read before the chunk is
// resolved, filtered and released.
const DefaultChunkSize = 100_000

// Options control a reference-data load.
type Options struct {
	// ActiveOnly keeps only rows passing the ACTIVE+ISSUED predicate.
	ActiveOnly bool

	// ChunkSize overrides DefaultChunkSize when > 0.
	ChunkSize int

	// Encoding names the source encoding ("latin1", "windows-1252", ...).
	// Empty or UTF-8 reads the file as-is.
	Encoding string

	// OnChunk, when set, is called after each chunk with cumulative
	// (rows read, rows kept) counts. Also the cancellation granularity:
	// ctx is polled between chunks, not between rows.
	OnChunk func(read, kept int)

	Logger *slog.Logger
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Load reads the reference file at path (.csv or .json) into a Table.
// An empty result after filtering is not an error: callers get a valid
// zero-row table and every subsequent match resolves to not-found.
func Load(ctx context.Context, path string, opts Options) (*Table, error) {
	t := &Table{ActiveOnly: opts.ActiveOnly}
	err := stream(ctx, path, opts,
		func(sm schemaMap) { t.FromCompact = sm.compact },
		func(rec Record) error {
			if !rec.ActiveIssued() {
				t.HasInactive = true
			}
			t.Records = append(t.Records, rec)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// stream drives the chunked read shared by Load and Compact: schema
// resolution from the header, per-chunk resolution and filtering, emit
// for every kept record. The raw chunk is reset after each flush so
// memory stays bounded by the filtered output, not the source size.
func stream(ctx context.Context, path string, opts Options, onSchema func(schemaMap), emit func(Record) error) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return streamCSV(ctx, path, opts, onSchema, emit)
	case ".json":
		return streamJSON(ctx, path, opts, onSchema, emit)
	default:
		return fmt.Errorf("%w : %q (formats acceptés : .csv, .json)", ErrUnsupportedFormat, ext)
	}
}

func openSource(path string, opts Options) (io.ReadCloser, io.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ouverture fichier de référence: %w", err)
	}

	var reader io.Reader = f
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("encodage %q non supporté: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}
	return f, reader, nil
}

func streamCSV(ctx context.Context, path string, opts Options, onSchema func(schemaMap), emit func(Record) error) error {
	f, reader, err := openSource(path, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(reader)
	// Strict quoting: a malformed row surfaces as a ParseError and is
	// dropped on its own, without aborting the load.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("lecture en-tête: %w", err)
	}
	sm := resolveSchema(header)
	warnMissing(opts.logger(), path, sm)
	onSchema(sm)

	var (
		read, kept, skipped int
		chunk               = make([][]string, 0, opts.chunkSize())
	)
	flush := func() error {
		for _, row := range chunk {
			rec := sm.record(row)
			if opts.ActiveOnly && !rec.ActiveIssued() {
				continue
			}
			if err := emit(rec); err != nil {
				return err
			}
			kept++
		}
		read += len(chunk)
		chunk = chunk[:0]
		if opts.OnChunk != nil {
			opts.OnChunk(read, kept)
		}
		return ctx.Err()
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return fmt.Errorf("lecture %s: %w", filepath.Base(path), err)
		}
		chunk = append(chunk, row)
		if len(chunk) >= opts.chunkSize() {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if skipped > 0 {
		opts.logger().Warn("lignes de référence illisibles ignorées",
			"file", filepath.Base(path), "rows", skipped)
	}
	return nil
}

func streamJSON(ctx context.Context, path string, opts Options, onSchema func(schemaMap), emit func(Record) error) error {
	f, reader, err := openSource(path, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(reader)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("lecture JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("JSON de référence invalide: tableau d'objets attendu")
	}

	var (
		sm     schemaMap
		header []string
		first  = true
		read   int
		kept   int
	)
	for dec.More() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return fmt.Errorf("lecture JSON: %w", err)
		}
		if first {
			header = make([]string, 0, len(obj))
			for k := range obj {
				header = append(header, k)
			}
			sort.Strings(header)
			sm = resolveSchema(header)
			warnMissing(opts.logger(), path, sm)
			onSchema(sm)
			first = false
		}

		row := make([]string, len(header))
		for i, h := range header {
			if v, ok := obj[h]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rec := sm.record(row)
		read++
		if !opts.ActiveOnly || rec.ActiveIssued() {
			if err := emit(rec); err != nil {
				return err
			}
			kept++
		}

		if read%opts.chunkSize() == 0 {
			if opts.OnChunk != nil {
				opts.OnChunk(read, kept)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	if opts.OnChunk != nil {
		opts.OnChunk(read, kept)
	}
	return ctx.Err()
}

func warnMissing(logger *slog.Logger, path string, sm schemaMap) {
	if len(sm.missing) == 0 {
		return
	}
	names := make([]string, len(sm.missing))
	for i, f := range sm.missing {
		names[i] = f.String()
	}
	logger.Warn("colonnes absentes du fichier de référence, valeurs vides",
		"file", filepath.Base(path), "columns", strings.Join(names, ", "))
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
