// Package archive keeps rendered reports in SQLite so they can be fetched
// again after the request that produced them.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	reperrors "github.com/medsai/report-engine/internal/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// StoreConfig holds configuration for the report archive
type StoreConfig struct {
	DBPath        string
	Retention     time.Duration // 0 keeps reports forever
	PruneInterval time.Duration
}

// DefaultConfig returns defaults for an archive under dataDir
func DefaultConfig(dataDir string) StoreConfig {
	return StoreConfig{
		DBPath:        filepath.Join(dataDir, "reports.db"),
		Retention:     30 * 24 * time.Hour,
		PruneInterval: time.Hour,
	}
}

// Entry is one archived report.
type Entry struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId,omitempty"`
	Format      string    `json:"format"`
	ContentType string    `json:"contentType"`
	Pages       int       `json:"pages"`
	Size        int       `json:"size"`
	Sections    []string  `json:"sections"`
	CreatedAt   time.Time `json:"createdAt"`
	Data        []byte    `json:"-"`
}

// Store is the SQLite-backed report archive.
type Store struct {
	db     *sql.DB
	config StoreConfig
	now    func() time.Time

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// archiveDSN builds a modernc DSN whose pragmas apply to every pooled
// connection.
func archiveDSN(path string) string {
	return path + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(5000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()
}

// NewStore opens (or creates) the archive database.
func NewStore(config StoreConfig) (*Store, error) {
	if strings.TrimSpace(config.DBPath) == "" {
		return nil, fmt.Errorf("archive database path is empty")
	}

	dir := filepath.Dir(config.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", archiveDSN(config.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:     db,
		config: config,
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if config.Retention > 0 && config.PruneInterval > 0 {
		go store.backgroundWorker()
	} else {
		close(store.doneCh)
	}

	log.Info().
		Str("path", config.DBPath).
		Dur("retention", config.Retention).
		Msg("Report archive initialized")

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL,
			content_type TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			size INTEGER NOT NULL,
			sections TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			data BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reports_created
		ON reports(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug().Msg("Archive schema initialized")
	return nil
}

// Save stores e and returns its ID. A missing ID or creation time is
// filled in.
func (s *Store) Save(ctx context.Context, e *Entry) (string, error) {
	if e == nil {
		return "", reperrors.WrapValidationError("archive_save", fmt.Errorf("nil entry"))
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.Size = len(e.Data)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, patient_id, format, content_type, pages, size, sections, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.PatientID, e.Format, e.ContentType, e.Pages, e.Size,
		strings.Join(e.Sections, ","), e.CreatedAt.UnixMilli(), e.Data)
	if err != nil {
		return "", reperrors.WrapStorageError("archive_save", err)
	}

	log.Debug().
		Str("id", e.ID).
		Str("format", e.Format).
		Int("bytes", e.Size).
		Msg("Archived report")
	return e.ID, nil
}

// Get returns the archived report with its payload.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, format, content_type, pages, size, sections, created_at, data
		FROM reports WHERE id = ?
	`, id)

	e, err := scanEntry(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reperrors.NewReportError(reperrors.ErrorTypeNotFound, "archive_get", reperrors.ErrNotFound).WithReportID(id)
	}
	if err != nil {
		return nil, reperrors.WrapStorageError("archive_get", err)
	}
	return e, nil
}

// List returns the newest reports first, without payloads. limit is
// clamped to [1, 100]; 0 means the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, format, content_type, pages, size, sections, created_at
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, reperrors.WrapStorageError("archive_list", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows.Scan, false)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to scan archived report")
			continue
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, reperrors.WrapStorageError("archive_list", err)
	}
	return entries, nil
}

// Count returns the number of archived reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, reperrors.WrapStorageError("archive_count", err)
	}
	return n, nil
}

// Prune deletes reports created before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, reperrors.WrapStorageError("archive_prune", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// ClampLimit applies the list paging bounds.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func scanEntry(scan func(dest ...any) error, withData bool) (*Entry, error) {
	var (
		e        Entry
		sections string
		created  int64
	)
	dest := []any{&e.ID, &e.PatientID, &e.Format, &e.ContentType, &e.Pages, &e.Size, &sections, &created}
	if withData {
		dest = append(dest, &e.Data)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if sections != "" {
		e.Sections = strings.Split(sections, ",")
	}
	e.CreatedAt = time.UnixMilli(created).UTC()
	return &e, nil
}

func (s *Store) backgroundWorker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runRetention()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) runRetention() {
	start := time.Now()
	deleted, err := s.Prune(context.Background(), s.now().Add(-s.config.Retention))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune report archive")
		return
	}
	if deleted > 0 {
		log.Info().
			Int64("deleted", deleted).
			Dur("duration", time.Since(start)).
			Msg("Report archive retention cleanup completed")
	}
}

// Close shuts down the store gracefully
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Report archive shutdown timed out")
	}

	return s.db.Close()
}
