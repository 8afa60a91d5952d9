package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/envelope"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StateStore = (*Store)(nil)

// Store is a SQLite-backed state store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.folio/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_state.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save encodes v under key, replacing any previous slice of that namespace.
func (s *Store) Save(ctx context.Context, key domain.SliceKey, v any) error {
	savedAt := s.now()
	raw, err := envelope.Encode(key.Version, savedAt, v)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", key.DocumentID, key.Namespace, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state_slices (document_id, namespace, version, saved_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id, namespace) DO UPDATE SET
			version = excluded.version,
			saved_at = excluded.saved_at,
			data = excluded.data
	`, key.DocumentID, key.Namespace, key.Version, savedAt.UTC().Format(time.RFC3339Nano), raw)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", key.DocumentID, key.Namespace, err)
	}
	return nil
}

// Load decodes the slice at key into v.
func (s *Store) Load(ctx context.Context, key domain.SliceKey, v any) error {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM state_slices WHERE document_id = ? AND namespace = ?",
		key.DocumentID, key.Namespace,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, key.DocumentID, key.Namespace)
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", key.DocumentID, key.Namespace, err)
	}

	if _, err := envelope.Decode(raw, key.Version, v); err != nil {
		return fmt.Errorf("load %s/%s: %w", key.DocumentID, key.Namespace, err)
	}
	return nil
}

// Delete removes one namespace of a document.
func (s *Store) Delete(ctx context.Context, documentID, namespace string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM state_slices WHERE document_id = ? AND namespace = ?",
		documentID, namespace,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", documentID, namespace, err)
	}
	return nil
}

// ListNamespaces returns the namespaces stored for a document, sorted.
func (s *Store) ListNamespaces(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT namespace FROM state_slices WHERE document_id = ? ORDER BY namespace",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		names = append(names, ns)
	}
	return names, rows.Err()
}
