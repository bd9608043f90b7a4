package updater

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Version is a row of the download history.
type Version struct {
	PublishDate  string
	Filename     string
	DownloadedAt int64
}

// VersionDB records which Golden Copy publications were downloaded and
// the outcome of the last availability check.
type VersionDB struct {
	db *sql.DB
}

// OpenVersionDB opens (or creates) the SQLite database at path and
// ensures its tables exist.
func OpenVersionDB(path string) (*VersionDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open version db: %w", err)
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS gleif_versions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		publish_date  TEXT NOT NULL,
		filename      TEXT NOT NULL,
		downloaded_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS update_checks (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		checked_at INTEGER NOT NULL,
		status     INTEGER NOT NULL,
		error      TEXT
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create version tables: %w", err)
	}
	return &VersionDB{db: db}, nil
}

// Close ferme la connexion SQLite.
func (v *VersionDB) Close() error {
	return v.db.Close()
}

// Latest returns the publish date of the most recently downloaded
// version, "" when nothing was downloaded yet.
func (v *VersionDB) Latest() (string, error) {
	var date string
	err := v.db.QueryRow(
		`SELECT publish_date FROM gleif_versions ORDER BY downloaded_at DESC, id DESC LIMIT 1`,
	).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest version: %w", err)
	}
	return date, nil
}

// Record appends a downloaded version to the history.
func (v *VersionDB) Record(publishDate, filename string) error {
	_, err := v.db.Exec(
		`INSERT INTO gleif_versions (publish_date, filename, downloaded_at) VALUES (?, ?, ?)`,
		publishDate, filename, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return nil
}

// History returns all downloaded versions, newest first.
func (v *VersionDB) History() ([]Version, error) {
	rows, err := v.db.Query(
		`SELECT publish_date, filename, downloaded_at FROM gleif_versions ORDER BY downloaded_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var ver Version
		if err := rows.Scan(&ver.PublishDate, &ver.Filename, &ver.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out = append(out, ver)
	}
	return out, rows.Err()
}

// UpdateCheck persists the result of an availability check, overwriting
// the previous one.
func (v *VersionDB) UpdateCheck(status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := v.db.Exec(
		`INSERT INTO update_checks (id, checked_at, status, error) VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET checked_at = excluded.checked_at,
			status = excluded.status, error = excluded.error`,
		time.Now().Unix(), status, errPtr,
	)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	return nil
}

// LastCheck returns the persisted availability check, ok=false when no
// check ran yet.
func (v *VersionDB) LastCheck() (checkedAt int64, status int, errMsg string, ok bool, err error) {
	var ep *string
	row := v.db.QueryRow(`SELECT checked_at, status, error FROM update_checks WHERE id = 1`)
	if scanErr := row.Scan(&checkedAt, &status, &ep); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return 0, 0, "", false, nil
		}
		return 0, 0, "", false, fmt.Errorf("last check: %w", scanErr)
	}
	if ep != nil {
		errMsg = *ep
	}
	return checkedAt, status, errMsg, true, nil
}

// IsUpdateAvailable compares publish dates. Both sides are expected in
// GLEIF's "YYYY-MM-DD HH:MM:SS" format; unparsable dates fall back to a
// plain inequality so a format change upstream still triggers a
// download.
func IsUpdateAvailable(local, remote string) bool {
	if local == "" {
		return true
	}
	const layout = "2006-01-02 15:04:05"
	lt, lerr := time.Parse(layout, local)
	rt, rerr := time.Parse(layout, remote)
	if lerr != nil || rerr != nil {
		return remote != local
	}
	return rt.After(lt)
}
