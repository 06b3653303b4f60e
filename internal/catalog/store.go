package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"patchforge/internal/config"
	"patchforge/internal/provenance"
	"patchforge/internal/services"
)

// Store manages the append-only catalog backed by SQLite. Reads are served
// from snapshots and never block writers; writes are serialized by a file
// lock plus a transactional compare-and-append revision check.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.CatalogDB
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: flock.New(dbPath + ".lock")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Append durably records a new entry. It fails with a conflict when the
// supplied revision is not exactly previous+1 for the key (or 1 for a new
// key), or when the back-reference does not point at the current head. The
// check runs inside the insert transaction so concurrent appends for the same
// key cannot both commit.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var head sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(revision) FROM catalog_entries WHERE key = ?", entry.Key,
	).Scan(&head); err != nil {
		return fmt.Errorf("read head revision: %w", err)
	}

	current := 0
	if head.Valid {
		current = int(head.Int64)
	}
	if entry.Revision != current+1 {
		return services.Wrap(services.ErrConflict, "catalog", "append",
			fmt.Sprintf("key %s: proposed revision %d, head is %d", entry.Key, entry.Revision, current), nil)
	}
	if entry.PrevRevision != current {
		return services.Wrap(services.ErrConflict, "catalog", "append",
			fmt.Sprintf("key %s: back-reference %d does not match head %d", entry.Key, entry.PrevRevision, current), nil)
	}

	specJSON, err := json.Marshal(entry.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_entries (
            key, revision, prev_revision, status, origin, source, confidence, spec_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Key,
		entry.Revision,
		entry.PrevRevision,
		string(entry.Status),
		string(entry.Provenance.Origin),
		nullableString(entry.Provenance.Source),
		entry.Confidence,
		string(specJSON),
		createdAt.Format(time.RFC3339Nano),
	); err != nil {
		if isUniqueViolation(err) {
			return services.Wrap(services.ErrConflict, "catalog", "append",
				fmt.Sprintf("key %s revision %d already exists", entry.Key, entry.Revision), nil)
		}
		return fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Latest returns the highest-revision entry for a key.
func (s *Store) Latest(ctx context.Context, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries WHERE key = ? ORDER BY revision DESC LIMIT 1`, key)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, services.Wrap(services.ErrNotFound, "catalog", "latest",
			fmt.Sprintf("key %s", key), nil)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("latest entry: %w", err)
	}
	return entry, nil
}

// History yields every revision of a key in ascending revision order. The
// sequence is lazy and restartable: each range re-queries the store, so a
// second iteration observes entries appended in between.
func (s *Store) History(ctx context.Context, key string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM catalog_entries WHERE key = ? ORDER BY revision ASC`, key)
		if err != nil {
			yield(Entry{}, fmt.Errorf("query history: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, err)
		}
	}
}

// Find returns every latest revision matching the predicate, ordered by key.
// Superseded revisions are invisible to search.
func (s *Store) Find(ctx context.Context, predicate func(Entry) bool) ([]Entry, error) {
	entries, err := s.AllLatest(ctx)
	if err != nil {
		return nil, err
	}
	if predicate == nil {
		return entries, nil
	}
	matched := entries[:0]
	for _, entry := range entries {
		if predicate(entry) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// AllLatest returns the latest revision of every key, ordered by key.
func (s *Store) AllLatest(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries
         WHERE (key, revision) IN (SELECT key, MAX(revision) FROM catalog_entries GROUP BY key)
         ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query latest entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns the number of keys and total revisions in the catalog.
func (s *Store) Stats(ctx context.Context) (keys int, revisions int, err error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT key), COUNT(1) FROM catalog_entries")
	if err := row.Scan(&keys, &revisions); err != nil {
		return 0, 0, fmt.Errorf("catalog stats: %w", err)
	}
	return keys, revisions, nil
}

func validateEntry(entry Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "append", "entry key is empty", nil)
	}
	if entry.Key != KeyFor(entry.Key) {
		return services.Wrap(services.ErrValidation, "catalog", "append",
			fmt.Sprintf("key %q is not in normalized form", entry.Key), nil)
	}
	if entry.Revision < 1 {
		return services.Wrap(services.ErrValidation, "catalog", "append",
			fmt.Sprintf("key %s: revision %d is not positive", entry.Key, entry.Revision), nil)
	}
	if entry.Status != EntryActive && entry.Status != EntryDeprecated {
		return services.Wrap(services.ErrValidation, "catalog", "append",
			fmt.Sprintf("key %s: unknown status %q", entry.Key, entry.Status), nil)
	}
	if entry.Confidence < 0 || entry.Confidence > 1 {
		return services.Wrap(services.ErrValidation, "catalog", "append",
			fmt.Sprintf("key %s: confidence %v outside [0,1]", entry.Key, entry.Confidence), nil)
	}
	return nil
}

const entryColumns = "key, revision, prev_revision, status, origin, source, confidence, spec_json, created_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		key          string
		revision     int
		prevRevision int
		status       string
		origin       string
		source       sql.NullString
		confidence   float64
		specJSON     string
		createdRaw   string
	)

	if err := scanner.Scan(&key, &revision, &prevRevision, &status, &origin, &source, &confidence, &specJSON, &createdRaw); err != nil {
		return Entry{}, err
	}

	var spec ModuleSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return Entry{}, fmt.Errorf("unmarshal spec for %s r%d: %w", key, revision, err)
	}

	entry := Entry{
		Key:          key,
		Revision:     revision,
		PrevRevision: prevRevision,
		Status:       EntryStatus(status),
		Provenance: provenance.Provenance{
			Origin: provenance.Origin(origin),
			Source: source.String,
		},
		Confidence: confidence,
		Spec:       spec,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}
