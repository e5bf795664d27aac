package tracking

import (
	"database/sql"
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// StoreFile is the name of the metric database inside a run directory.
const StoreFile = "metrics.db"

// Point is one logged value of a metric.
type Point struct {
	Step  int
	Value float64
}

// Store is the queryable copy of a run's metric log.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the metric database of the run in dir.
func OpenStore(dir string) (*Store, error) {
	path := filepath.Join(dir, StoreFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metrics(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			step INTEGER NOT NULL,
			key TEXT NOT NULL,
			value REAL
		)`)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "create metrics table in %s", path)
	}
	return &Store{db: db}, nil
}

// Insert stores every value of rec in one transaction.
func (s *Store) Insert(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	ts := float64(rec.Time.UnixMilli()) / 1000.0
	for key, value := range rec.Values {
		var v sql.NullFloat64
		if !math.IsNaN(value) {
			v = sql.NullFloat64{Float64: value, Valid: true}
		}
		if _, err := tx.Exec("INSERT INTO metrics(ts, step, key, value) VALUES(?,?,?,?)", ts, rec.Step, key, v); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert %s at step %d", key, rec.Step)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Keys returns every metric name in the store, sorted.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT key FROM metrics ORDER BY key")
	if err != nil {
		return nil, errors.Wrap(err, "query keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.Wrap(err, "scan key")
		}
		keys = append(keys, k)
	}
	return keys, errors.Wrap(rows.Err(), "query keys")
}

// History returns the logged values of key in logging order. Values that
// were NaN when logged come back as NaN.
func (s *Store) History(key string) ([]Point, error) {
	rows, err := s.db.Query("SELECT step, value FROM metrics WHERE key = ? ORDER BY id", key)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", key)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			step  int
			value sql.NullFloat64
		)
		if err := rows.Scan(&step, &value); err != nil {
			return nil, errors.Wrapf(err, "scan %s", key)
		}
		p := Point{Step: step, Value: math.NaN()}
		if value.Valid {
			p.Value = value.Float64
		}
		points = append(points, p)
	}
	return points, errors.Wrapf(rows.Err(), "query %s", key)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
