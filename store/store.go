// Package store persists profiles and connections in PostgreSQL so the
// in-memory registry and graph survive a restart. Writes are best effort from
// the caller's point of view; memory stays the source of truth while running.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	attributes JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS connections (
	user_a     TEXT NOT NULL,
	user_b     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_a, user_b),
	CHECK (user_a < user_b)
);`

// Store is a PostgreSQL backed profile and connection store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reach database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveProfile inserts or replaces the profile.
func (s *Store) SaveProfile(ctx context.Context, p match.Profile) error {
	return saveProfile(ctx, s.db, p)
}

func saveProfile(ctx context.Context, ex execer, p match.Profile) error {
	if p.ID == "" {
		return match.ErrInvalidProfile
	}
	attrs, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.ID, err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO profiles (id, attributes)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET attributes = EXCLUDED.attributes, updated_at = NOW()
	`, p.ID, attrs)
	if err != nil {
		return fmt.Errorf("save profile %q: %w", p.ID, err)
	}
	return nil
}

// DeleteProfile removes the profile row. Connections are left alone.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	return nil
}

// LoadProfiles returns every stored profile in the order they were first
// saved.
func (s *Store) LoadProfiles(ctx context.Context) ([]match.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT attributes FROM profiles ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	var out []match.Profile
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		var p match.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveConnection records the undirected edge {a, b}.
func (s *Store) SaveConnection(ctx context.Context, a, b string) error {
	return saveConnection(ctx, s.db, a, b)
}

func saveConnection(ctx context.Context, ex execer, a, b string) error {
	if a == "" || b == "" {
		return match.ErrInvalidProfile
	}
	if a == b {
		return match.ErrSelfConnection
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO connections (user_a, user_b)
		VALUES (LEAST($1::text, $2::text), GREATEST($1::text, $2::text))
		ON CONFLICT (user_a, user_b) DO NOTHING
	`, a, b)
	if err != nil {
		return fmt.Errorf("save connection %q-%q: %w", a, b, err)
	}
	return nil
}

// DeleteConnection removes the edge {a, b} if present.
func (s *Store) DeleteConnection(ctx context.Context, a, b string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM connections
		WHERE user_a = LEAST($1::text, $2::text) AND user_b = GREATEST($1::text, $2::text)
	`, a, b)
	if err != nil {
		return fmt.Errorf("delete connection %q-%q: %w", a, b, err)
	}
	return nil
}

// LoadConnections returns every stored edge with the smaller id first.
func (s *Store) LoadConnections(ctx context.Context) ([][2]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_a, user_b FROM connections ORDER BY user_a, user_b`)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var e [2]string
		if err := rows.Scan(&e[0], &e[1]); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Import writes profiles and edges in one transaction.
func (s *Store) Import(ctx context.Context, profiles []match.Profile, edges [][2]string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, p := range profiles {
			if err := saveProfile(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := saveConnection(ctx, tx, e[0], e[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Truncate removes every profile and connection.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE profiles, connections`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// Restore loads stored profiles and edges into reg and g. It returns how many
// of each were added.
func (s *Store) Restore(ctx context.Context, reg *match.Registry, g *match.Graph) (profiles, edges int, err error) {
	ps, err := s.LoadProfiles(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range ps {
		added, err := reg.Add(p)
		if err != nil {
			return profiles, 0, fmt.Errorf("restore profile %q: %w", p.ID, err)
		}
		if added {
			profiles++
		}
	}

	es, err := s.LoadConnections(ctx)
	if err != nil {
		return profiles, 0, err
	}
	for _, e := range es {
		if err := g.Connect(e[0], e[1]); err != nil {
			return profiles, edges, fmt.Errorf("restore connection %q-%q: %w", e[0], e[1], err)
		}
		edges++
	}
	return profiles, edges, nil
}

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
