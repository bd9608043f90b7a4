package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"leimatch/pkg/input"
	"leimatch/pkg/match"
	"leimatch/pkg/refdata"
	"leimatch/pkg/report"
)

func cmdMatch(args []string) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "fichier de configuration")
	inPath := fs.String("in", "", "fichier d'entreprises à rapprocher (.csv ou .xlsx)")
	outPath := fs.String("out", "", "fichier de résultats (.csv ou .xlsx)")
	refPath := fs.String("ref", "", "base GLEIF (défaut: gleif_file de la configuration)")
	fs.Parse(args)

	logger := newLogger()
	cfg := loadConfig(*cfgPath, logger)

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: leimatch match -in <fichier> -out <fichier> [-ref <base>] [-config <yaml>]")
		os.Exit(1)
	}
	ref := *refPath
	if ref == "" {
		ref = cfg.GleifFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cols := input.Columns{ID: cfg.ColID, Name: cfg.ColName, Country: cfg.ColCountry, LEI: cfg.ColLEI}

	logger.Info("lecture du fichier d'entrée", "path", *inPath)
	rows, err := input.Read(*inPath, cols)
	if err != nil {
		if input.IsPermission(err) {
			logger.Error("fichier inaccessible, probablement ouvert dans Excel; travaillez sur une copie", "path", *inPath)
		} else {
			logger.Error("lecture du fichier d'entrée", "error", err)
		}
		os.Exit(1)
	}
	if len(rows) == 0 {
		logger.Error("aucune ligne à traiter", "path", *inPath)
		os.Exit(1)
	}
	logger.Info("fichier d'entrée chargé", "lignes", len(rows))

	// A filtered load halves memory but hides the inactive rows the
	// validation fallback needs, so it only applies without a LEI column.
	loadActiveOnly := cfg.ActiveOnly && cfg.ColLEI == ""

	logger.Info("chargement de la base GLEIF", "path", ref, "active_only", loadActiveOnly)
	table, err := refdata.Load(ctx, ref, refdata.Options{
		ActiveOnly: loadActiveOnly,
		ChunkSize:  cfg.ChunkSize,
		Encoding:   cfg.Encoding,
		Logger:     logger,
		OnChunk: func(read, kept int) {
			fmt.Fprintf(os.Stderr, "\r  %d lignes lues, %d retenues", read, kept)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr)
		fatalLoad(logger, err)
	}
	fmt.Fprintln(os.Stderr)
	logger.Info("base GLEIF chargée", "entités", table.Len())

	idx := match.BuildIndexes(table)
	m := match.New(idx, match.Config{
		ActiveOnly:           cfg.ActiveOnly,
		ApproxIDThreshold:    cfg.ApproxIDThreshold,
		NameThreshold:        cfg.FuzzyThreshold,
		DiscordNameThreshold: cfg.DiscordNameThreshold,
		Logger:               logger,
	})

	prog := report.Console(os.Stderr)
	prog.Phase(fmt.Sprintf("Rapprochement de %d lignes...", len(rows)))
	outs, err := match.ResolveAll(ctx, m, rows, cfg.Workers, prog.Step)
	if err != nil {
		logger.Error("rapprochement interrompu", "error", err)
		os.Exit(1)
	}

	header, data := assemble(cols, rows, outs)
	if err := report.Write(*outPath, header, data); err != nil {
		logger.Error("écriture des résultats", "error", err)
		os.Exit(1)
	}
	logger.Info("résultats écrits", "path", *outPath)

	fmt.Print(report.Tally(outs).Summary())
}

// assemble prepends the bound input cells to the enriched columns.
func assemble(cols input.Columns, rows []match.InputRow, outs []match.Outcome) ([]string, [][]string) {
	header := []string{cols.ID, cols.Name, cols.Country}
	if cols.LEI != "" {
		header = append(header, cols.LEI)
	}
	header = append(header, report.Headers...)

	data := make([][]string, len(rows))
	for i, in := range rows {
		cells := []string{in.RegistrationID, in.LegalName, in.Country}
		if cols.LEI != "" {
			cells = append(cells, in.DeclaredLEI)
		}
		data[i] = append(cells, report.Row(outs[i])...)
	}
	return header, data
}

func fatalLoad(logger *slog.Logger, err error) {
	if errors.Is(err, refdata.ErrUnsupportedFormat) {
		logger.Error("format de base non pris en charge (attendu .csv ou .json)", "error", err)
	} else {
		logger.Error("chargement de la base GLEIF", "error", err)
	}
	os.Exit(1)
}
