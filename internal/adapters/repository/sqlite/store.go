// Package sqlite stores submitted assessments in an embedded SQLite database
// through the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/pkg/metrics"
	_ "modernc.org/sqlite" // driver: sqlite
)

// DefaultDSN is used when no DSN is configured.
const DefaultDSN = "file:checkin.db?_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  surname TEXT NOT NULL,
  email TEXT NOT NULL,
  mobile TEXT NOT NULL DEFAULT '',
  brand_advocate REAL NOT NULL DEFAULT 0,
  investigator REAL NOT NULL DEFAULT 0,
  team_player REAL NOT NULL DEFAULT 0,
  leadership_ethics REAL NOT NULL DEFAULT 0,
  business_acumen REAL NOT NULL DEFAULT 0,
  products_services REAL NOT NULL DEFAULT 0,
  sales_planning_selling REAL NOT NULL DEFAULT 0,
  experience_rating INTEGER NOT NULL,
  responses_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS assessments_created_at ON assessments (created_at);
`

const columns = `id, first_name, surname, email, mobile, brand_advocate, investigator,
  team_player, leadership_ethics, business_acumen, products_services,
  sales_planning_selling, experience_rating, responses_json, created_at`

// Store implements repository.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert adds a row. A conflicting id reports repository.ErrDuplicate.
func (s *Store) Insert(ctx context.Context, rec model.Record) error {
	defer observe("insert", time.Now())

	if rec.ID == "" {
		return repository.ErrInvalidID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO assessments (`+columns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.FirstName, rec.Surname, rec.Email, rec.Mobile,
		rec.BrandAdvocate, rec.Investigator, rec.TeamPlayer, rec.LeadershipEthics,
		rec.BusinessAcumen, rec.ProductsServices, rec.SalesPlanningSelling,
		rec.ExperienceRating, string(responses), rec.CreatedAt.UnixNano())
	if err != nil {
		metrics.RecordErrorByComponent("repository", "insert_failed")
		return fmt.Errorf("insert assessment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		metrics.RecordErrorByComponent("repository", "duplicate")
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, rec.ID)
	}
	return nil
}

// Get returns the row with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Record, error) {
	defer observe("get", time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM assessments WHERE id = ?`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Record{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return rec, err
}

// List returns a page of rows, oldest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]model.Record, error) {
	defer observe("list", time.Now())

	if err := repository.CheckPage(limit, offset); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM assessments
		ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := []model.Record{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (model.Record, error) {
	var (
		rec       model.Record
		responses string
		created   int64
	)
	err := sc.Scan(&rec.ID, &rec.FirstName, &rec.Surname, &rec.Email, &rec.Mobile,
		&rec.BrandAdvocate, &rec.Investigator, &rec.TeamPlayer, &rec.LeadershipEthics,
		&rec.BusinessAcumen, &rec.ProductsServices, &rec.SalesPlanningSelling,
		&rec.ExperienceRating, &responses, &created)
	if err != nil {
		return model.Record{}, err
	}
	if err := json.Unmarshal([]byte(responses), &rec.Responses); err != nil {
		return model.Record{}, fmt.Errorf("decode responses of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
