package updater

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FinalCSVName is the stable filename the extracted Golden Copy is
// renamed to, whatever the dated name inside the archive.
const FinalCSVName = "gleif_golden_copy.csv"

const zipName = "gleif_golden_copy_download.zip"

// Download streams the publication ZIP to destDir with retries.
// onProgress, when non-nil, receives (bytes done, total) as the body is
// read; total comes from the publication metadata and may be zero.
func Download(ctx context.Context, client *http.Client, url, destDir string, total int64, onProgress func(done, total int64)) (string, error) {
	dest := filepath.Join(destDir, zipName)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		f, err := os.Create(dest)
		if err != nil {
			resp.Body.Close()
			return "", fmt.Errorf("create file: %w", err)
		}

		copyErr := copyWithProgress(f, resp.Body, total, onProgress)
		resp.Body.Close()
		closeErr := f.Close()

		if copyErr != nil {
			lastErr = copyErr
			continue
		}
		if closeErr != nil {
			return "", closeErr
		}
		return dest, nil
	}
	return "", fmt.Errorf("téléchargement de %s échoué après 3 tentatives: %w", url, lastErr)
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, onProgress func(done, total int64)) error {
	buf := make([]byte, 256*1024)
	var done int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(done, total)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ExtractCSV pulls the first CSV member out of the downloaded ZIP,
// renames it to FinalCSVName in destDir and removes the ZIP. Returns
// the final CSV path.
func ExtractCSV(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var member *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			member = f
			break
		}
	}
	if member == nil {
		return "", fmt.Errorf("aucun fichier CSV dans l'archive GLEIF")
	}

	final := filepath.Join(destDir, FinalCSVName)
	rc, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("open zip entry %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(final)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", final, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", fmt.Errorf("extract %s: %w", member.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if err := os.Remove(zipPath); err != nil {
		return "", fmt.Errorf("remove %s: %w", zipPath, err)
	}
	return final, nil
}
