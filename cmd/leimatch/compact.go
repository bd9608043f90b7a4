package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leimatch/pkg/refdata"
)

func cmdCompact(args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "fichier de configuration")
	inPath := fs.String("in", "", "Golden Copy source (.csv ou .json)")
	outPath := fs.String("out", "", "fichier compact de sortie (.csv)")
	activeOnly := fs.Bool("active", false, "ne garder que les entités ACTIVE + ISSUED")
	fs.Parse(args)

	logger := newLogger()
	cfg := loadConfig(*cfgPath, logger)

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: leimatch compact -in <base> -out <fichier> [-active]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("compactage", "src", *inPath, "dst", *outPath, "active_only", *activeOnly)
	written, err := refdata.Compact(ctx, *inPath, *outPath, refdata.Options{
		ActiveOnly: *activeOnly,
		ChunkSize:  cfg.ChunkSize,
		Encoding:   cfg.Encoding,
		Logger:     logger,
		OnChunk: func(read, kept int) {
			fmt.Fprintf(os.Stderr, "\r  %d lignes lues, %d écrites", read, kept)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr)
		fatalLoad(logger, err)
	}
	fmt.Fprintln(os.Stderr)
	logger.Info("fichier compact écrit", "path", *outPath, "entités", written)
}
