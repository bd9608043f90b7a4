package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type config struct {
	// Input column headers to bind.
	ColID      string `yaml:"col_rcs"`
	ColName    string `yaml:"col_name"`
	ColCountry string `yaml:"col_pays"`
	ColLEI     string `yaml:"col_lei"`

	// Matching thresholds (0-100).
	FuzzyThreshold       int `yaml:"fuzzy_threshold"`
	ApproxIDThreshold    int `yaml:"approx_id_threshold"`
	DiscordNameThreshold int `yaml:"discord_name_threshold"`

	ActiveOnly bool   `yaml:"active_only"`
	ChunkSize  int    `yaml:"chunk_size"`
	Workers    int    `yaml:"workers"`
	Encoding   string `yaml:"encoding"`

	GleifFile string `yaml:"gleif_file"`
	VersionDB string `yaml:"version_db"`
	Proxy     string `yaml:"proxy"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "match":
		cmdMatch(os.Args[2:])
	case "compact":
		cmdCompact(os.Args[2:])
	case "update":
		cmdUpdate(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: leimatch <commande>

Commandes:
  match     Rapproche un fichier d'entreprises de la base GLEIF
  compact   Réduit un Golden Copy aux colonnes utiles au rapprochement
  update    Vérifie et télécharge la dernière publication GLEIF
`)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		ColID:                "RCS",
		ColName:              "NomEntreprise",
		ColCountry:           "Pays",
		ColLEI:               "",
		FuzzyThreshold:       80,
		ApproxIDThreshold:    88,
		DiscordNameThreshold: 70,
		ActiveOnly:           true,
		ChunkSize:            100_000,
		Workers:              1,
		GleifFile:            "gleif_golden_copy.csv",
		VersionDB:            "gleif_versions.db",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("pas de fichier de configuration, valeurs par défaut", "path", path)
			return cfg
		}
		logger.Error("lecture de la configuration", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("analyse de la configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}
