package updater

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Status is the outcome of a CheckAndDownload run.
type Status string

const (
	StatusUpToDate Status = "up_to_date"
	StatusUpdated  Status = "updated"
)

// Updater orchestrates one update cycle: metadata fetch, version
// comparison, download, extraction, bookkeeping.
type Updater struct {
	Client *http.Client
	DB     *VersionDB
	Logger *slog.Logger

	// APIURL defaults to the GLEIF endpoint; tests point it elsewhere.
	APIURL string
}

// CheckAndDownload fetches the latest publication metadata and, when it
// is newer than the last downloaded version, downloads and extracts it
// into destDir. Returns the status and, on StatusUpdated, the final CSV
// path.
func (u *Updater) CheckAndDownload(ctx context.Context, destDir string, onProgress func(done, total int64)) (Status, string, error) {
	apiURL := u.APIURL
	if apiURL == "" {
		apiURL = APIURL
	}

	u.Logger.Info("vérification de la dernière version GLEIF", "url", apiURL)
	pub, err := FetchLatest(ctx, u.Client, apiURL)
	if err != nil {
		if dbErr := u.DB.UpdateCheck(0, err.Error()); dbErr != nil {
			u.Logger.Error("échec mise à jour du statut de vérification", "error", dbErr)
		}
		return "", "", err
	}
	if err := u.DB.UpdateCheck(http.StatusOK, ""); err != nil {
		u.Logger.Error("échec mise à jour du statut de vérification", "error", err)
	}

	local, err := u.DB.Latest()
	if err != nil {
		return "", "", err
	}
	if !IsUpdateAvailable(local, pub.PublishDate) {
		u.Logger.Info("base GLEIF déjà à jour", "version", pub.PublishDate)
		return StatusUpToDate, pub.PublishDate, nil
	}

	u.Logger.Info("nouvelle version disponible",
		"version", pub.PublishDate, "taille", pub.SizeHuman, "entités", pub.RecordCount)

	zipPath, err := Download(ctx, u.Client, pub.DownloadURL, destDir, pub.SizeBytes, onProgress)
	if err != nil {
		return "", "", err
	}

	csvPath, err := ExtractCSV(zipPath, destDir)
	if err != nil {
		return "", "", err
	}

	if err := u.DB.Record(pub.PublishDate, filepath.Base(csvPath)); err != nil {
		return "", "", fmt.Errorf("enregistrement de la version: %w", err)
	}

	u.Logger.Info("mise à jour réussie", "version", pub.PublishDate, "fichier", csvPath)
	return StatusUpdated, csvPath, nil
}
