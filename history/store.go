// Package history persists breadcrumb navigation targets in SQLite so
// recently and frequently visited locations can be resurfaced.
package history

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
)

// Visit is one recorded navigation.
type Visit struct {
	Resource  uri.URI
	Kind      string
	Name      string
	Line      int
	VisitedAt time.Time
}

// Store keeps visits in a SQLite database. Recording is best-effort: a
// failed insert is logged, never surfaced to navigation.
type Store struct {
	db     *sql.DB
	keep   int
	logger *log.Logger
}

// NewStore opens/creates the database at dbPath and prunes to the newest
// keep visits.
func NewStore(dbPath string, keep int, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	store := &Store{db: db, keep: keep, logger: logger}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uri TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		line INTEGER NOT NULL,
		visited_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visits_uri ON visits(uri);
	CREATE INDEX IF NOT EXISTS idx_visits_time ON visits(visited_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores one navigation target. Implements the recorder hook of the
// breadcrumb control.
func (s *Store) Record(res uri.URI, el breadcrumbs.Element) {
	visit := Visit{Resource: res, VisitedAt: time.Now().UTC()}
	switch target := el.(type) {
	case breadcrumbs.FileElement:
		visit.Kind = "file"
		visit.Name = target.Label()
		visit.Resource = target.URI
	case breadcrumbs.SymbolElement:
		visit.Kind = "symbol"
		visit.Name = target.Name
		visit.Line = int(target.SelectionRange.Start.Line)
	default:
		return
	}
	if err := s.insert(visit); err != nil {
		s.logger.Printf("history: record %s: %v", visit.Name, err)
	}
}

func (s *Store) insert(visit Visit) error {
	_, err := s.db.Exec(
		`INSERT INTO visits (uri, kind, name, line, visited_at) VALUES (?, ?, ?, ?, ?)`,
		string(visit.Resource), visit.Kind, visit.Name, visit.Line, visit.VisitedAt,
	)
	if err != nil {
		return err
	}
	return s.prune()
}

// prune drops everything but the newest keep visits.
func (s *Store) prune() error {
	if s.keep <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`DELETE FROM visits WHERE id NOT IN (SELECT id FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?)`,
		s.keep,
	)
	return err
}

// Recent returns the newest visits, most recent first.
func (s *Store) Recent(limit int) ([]Visit, error) {
	rows, err := s.db.Query(
		`SELECT uri, kind, name, line, visited_at FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVisits(rows)
}

// Frequency is an aggregated visit count for one target.
type Frequency struct {
	Resource uri.URI
	Name     string
	Count    int
}

// MostVisited aggregates visits per target, most frequent first.
func (s *Store) MostVisited(limit int) ([]Frequency, error) {
	rows, err := s.db.Query(
		`SELECT uri, name, COUNT(*) AS visits FROM visits GROUP BY uri, name ORDER BY visits DESC, MAX(visited_at) DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Frequency
	for rows.Next() {
		var freq Frequency
		var res string
		if err := rows.Scan(&res, &freq.Name, &freq.Count); err != nil {
			return nil, err
		}
		freq.Resource = uri.URI(res)
		out = append(out, freq)
	}
	return out, rows.Err()
}

func scanVisits(rows *sql.Rows) ([]Visit, error) {
	var out []Visit
	for rows.Next() {
		var visit Visit
		var res string
		if err := rows.Scan(&res, &visit.Kind, &visit.Name, &visit.Line, &visit.VisitedAt); err != nil {
			return nil, err
		}
		visit.Resource = uri.URI(res)
		out = append(out, visit)
	}
	return out, rows.Err()
}
