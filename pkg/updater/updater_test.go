package updater

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func apiJSON(publishDate, downloadURL string) string {
	return fmt.Sprintf(`{"data":[{"publish_date":%q,"full_file":{"csv":{
		"url":%q,"size":1024,"size_human_readable":"1.00 KB","record_count":2}}}]}`,
		publishDate, downloadURL)
}

func buildZip(t *testing.T, csvName, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(csvName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchLatest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, apiJSON("2026-08-28 08:00:00", "https://example.org/lei2.zip"))
	}))
	defer ts.Close()

	client, err := NewClient("", 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := FetchLatest(context.Background(), client, ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if pub.PublishDate != "2026-08-28 08:00:00" {
		t.Errorf("PublishDate = %q", pub.PublishDate)
	}
	if pub.DownloadURL != "https://example.org/lei2.zip" || pub.SizeBytes != 1024 || pub.RecordCount != 2 {
		t.Errorf("pub = %+v", pub)
	}
}

func TestFetchLatestNoPublication(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer ts.Close()

	client, _ := NewClient("", 10*time.Second)
	if _, err := FetchLatest(context.Background(), client, ts.URL); err == nil {
		t.Fatal("want error on empty publication list")
	}
}

func TestNewClientProxy(t *testing.T) {
	client, err := NewClient("proxy.interne:8080", 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, "https://goldencopy.gleif.org/", nil)
	u, err := client.Transport.(*http.Transport).Proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.String() != "http://proxy.interne:8080" {
		t.Errorf("proxy = %v, want http://proxy.interne:8080", u)
	}
}

func TestDownloadAndExtract(t *testing.T) {
	payload := buildZip(t, "lei2-20260828-golden-copy.csv", "LEI,Entity.LegalName\nX,ACME\n")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	dir := t.TempDir()
	var lastDone, lastTotal int64
	client, _ := NewClient("", 10*time.Second)
	zipPath, err := Download(context.Background(), client, ts.URL, dir, int64(len(payload)),
		func(done, total int64) { lastDone, lastTotal = done, total })
	if err != nil {
		t.Fatal(err)
	}
	if lastDone != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Errorf("progress = (%d, %d), want (%d, %d)", lastDone, lastTotal, len(payload), len(payload))
	}

	csvPath, err := ExtractCSV(zipPath, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(csvPath) != FinalCSVName {
		t.Errorf("csvPath = %q", csvPath)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("ACME")) {
		t.Errorf("extracted content = %q", data)
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Error("zip should be removed after extraction")
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	payload := buildZip(t, "lei2.csv", "LEI\n")
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "indisponible", http.StatusServiceUnavailable)
			return
		}
		w.Write(payload)
	}))
	defer ts.Close()

	client, _ := NewClient("", 10*time.Second)
	if _, err := Download(context.Background(), client, ts.URL, t.TempDir(), 0, nil); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExtractCSVNoMember(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(zipPath, buildZip(t, "notes.txt", "rien"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractCSV(zipPath, dir); err == nil {
		t.Fatal("want error when the archive has no CSV")
	}
}

func TestVersionDB(t *testing.T) {
	db, err := OpenVersionDB(filepath.Join(t.TempDir(), "versions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	latest, err := db.Latest()
	if err != nil || latest != "" {
		t.Fatalf("Latest() = %q, %v, want empty on fresh db", latest, err)
	}

	if err := db.Record("2026-07-01 08:00:00", FinalCSVName); err != nil {
		t.Fatal(err)
	}
	if err := db.Record("2026-08-28 08:00:00", FinalCSVName); err != nil {
		t.Fatal(err)
	}

	latest, err = db.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != "2026-08-28 08:00:00" {
		t.Errorf("Latest() = %q", latest)
	}

	hist, err := db.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].PublishDate != "2026-08-28 08:00:00" {
		t.Errorf("History() = %+v", hist)
	}

	if err := db.UpdateCheck(200, ""); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateCheck(0, "délai dépassé"); err != nil {
		t.Fatal(err)
	}
	_, status, errMsg, ok, err := db.LastCheck()
	if err != nil || !ok {
		t.Fatalf("LastCheck: ok=%v err=%v", ok, err)
	}
	if status != 0 || errMsg != "délai dépassé" {
		t.Errorf("LastCheck = (%d, %q), want last write", status, errMsg)
	}
}

func TestIsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name          string
		local, remote string
		want          bool
	}{
		{"no local version", "", "2026-08-28 08:00:00", true},
		{"remote newer", "2026-07-01 08:00:00", "2026-08-28 08:00:00", true},
		{"same version", "2026-08-28 08:00:00", "2026-08-28 08:00:00", false},
		{"remote older", "2026-08-28 08:00:00", "2026-07-01 08:00:00", false},
		{"unparsable falls back to inequality", "v1", "v2", true},
		{"unparsable equal", "v1", "v1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUpdateAvailable(tt.local, tt.remote); got != tt.want {
				t.Errorf("IsUpdateAvailable(%q, %q) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
		})
	}
}

func TestCheckAndDownload(t *testing.T) {
	payload := buildZip(t, "lei2-golden-copy.csv", "LEI,Entity.LegalName\nX,ACME\n")

	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apiJSON("2026-08-28 08:00:00", ts.URL+"/zip"))
	})
	mux.HandleFunc("/zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	dir := t.TempDir()
	db, err := OpenVersionDB(filepath.Join(dir, "versions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	client, _ := NewClient("", 10*time.Second)
	u := &Updater{Client: client, DB: db, Logger: testLogger(), APIURL: ts.URL + "/api"}

	status, path, err := u.CheckAndDownload(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusUpdated {
		t.Fatalf("status = %q, want updated", status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("final CSV missing: %v", err)
	}

	// Second run: the recorded version matches the remote one.
	status, _, err = u.CheckAndDownload(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusUpToDate {
		t.Errorf("status = %q, want up_to_date", status)
	}
}
