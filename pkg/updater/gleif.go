// Package updater keeps the local Golden Copy current: it queries the
// GLEIF publication API, downloads new publications, extracts the CSV
// and records what was downloaded in a small SQLite database.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIURL is the GLEIF endpoint listing Golden Copy publications, most
// recent first.
const APIURL = "https://goldencopy.gleif.org/api/v2/golden-copies/publishes/lei2"

const userAgent = "leimatch/1.0"

// Publication describes the latest Golden Copy available upstream.
type Publication struct {
	// PublishDate is GLEIF's timestamp, "YYYY-MM-DD HH:MM:SS".
	PublishDate string
	SizeBytes   int64
	SizeHuman   string
	DownloadURL string
	RecordCount int64
}

// NewClient builds the HTTP client used for API and download requests.
// An explicit proxy URL wins over the environment; a scheme-less proxy
// gets http:// prepended.
func NewClient(proxy string, timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if p := strings.TrimSpace(proxy); p != "" {
		if !strings.HasPrefix(p, "http") {
			p = "http://" + p
		}
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("proxy invalide %q: %w", proxy, err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

type apiResponse struct {
	Data []struct {
		PublishDate string `json:"publish_date"`
		FullFile    struct {
			CSV struct {
				URL         string `json:"url"`
				Size        int64  `json:"size"`
				SizeHuman   string `json:"size_human_readable"`
				RecordCount int64  `json:"record_count"`
			} `json:"csv"`
		} `json:"full_file"`
	} `json:"data"`
}

// FetchLatest queries apiURL and returns the newest publication's
// metadata.
func FetchLatest(ctx context.Context, client *http.Client, apiURL string) (Publication, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Publication{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return Publication{}, fmt.Errorf("interrogation de l'API GLEIF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Publication{}, fmt.Errorf("API GLEIF: HTTP %d", resp.StatusCode)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Publication{}, fmt.Errorf("décodage de la réponse GLEIF: %w", err)
	}
	if len(raw.Data) == 0 {
		return Publication{}, fmt.Errorf("l'API GLEIF n'a retourné aucune publication")
	}

	latest := raw.Data[0]
	csv := latest.FullFile.CSV
	if csv.URL == "" {
		return Publication{}, fmt.Errorf("publication GLEIF sans URL de téléchargement CSV")
	}
	return Publication{
		PublishDate: latest.PublishDate,
		SizeBytes:   csv.Size,
		SizeHuman:   csv.SizeHuman,
		DownloadURL: csv.URL,
		RecordCount: csv.RecordCount,
	}, nil
}
