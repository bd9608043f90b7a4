package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"leimatch/pkg/updater"
)

func cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "fichier de configuration")
	dir := fs.String("dir", "", "dossier de destination (défaut: dossier de gleif_file)")
	fs.Parse(args)

	logger := newLogger()
	cfg := loadConfig(*cfgPath, logger)

	dest := *dir
	if dest == "" {
		dest = filepath.Dir(cfg.GleifFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := updater.NewClient(cfg.Proxy, 10*time.Minute)
	if err != nil {
		logger.Error("configuration du client HTTP", "error", err)
		os.Exit(1)
	}

	db, err := updater.OpenVersionDB(cfg.VersionDB)
	if err != nil {
		logger.Error("ouverture de la base de versions", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	u := &updater.Updater{Client: client, DB: db, Logger: logger}
	status, detail, err := u.CheckAndDownload(ctx, dest, func(done, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\r  %d%% (%d/%d octets)", 100*done/total, done, total)
		} else {
			fmt.Fprintf(os.Stderr, "\r  %d octets", done)
		}
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		logger.Error("mise à jour GLEIF", "error", err)
		os.Exit(1)
	}

	switch status {
	case updater.StatusUpToDate:
		fmt.Printf("Base GLEIF déjà à jour (version du %s).\n", detail)
	case updater.StatusUpdated:
		fmt.Printf("Mise à jour réussie. Fichier: %s\n", detail)
	}
}
