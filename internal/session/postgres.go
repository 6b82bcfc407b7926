package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions in PostgreSQL for multi-tenant deployments.
// Identity always comes from the owner column; there is no ambient pointer.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS modulation_sessions (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			dose DOUBLE PRECISION NOT NULL,
			intensity DOUBLE PRECISION NOT NULL,
			safety_anchors TEXT[] NOT NULL DEFAULT '{}',
			current_mode TEXT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_modulation_sessions_owner_status
			ON modulation_sessions (owner, status, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_modulation_sessions_expires ON modulation_sessions (expires_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init session schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const sessionColumns = `id, owner, dose, intensity, safety_anchors, current_mode, status, created_at, expires_at`

func (s *PostgresStore) Mode() string { return "remote" }

func (s *PostgresStore) Save(ctx context.Context, sess Session) error {
	anchors := sess.SafetyAnchors
	if anchors == nil {
		anchors = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO modulation_sessions (`+sessionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
			owner=EXCLUDED.owner,
			dose=EXCLUDED.dose,
			intensity=EXCLUDED.intensity,
			safety_anchors=EXCLUDED.safety_anchors,
			current_mode=EXCLUDED.current_mode,
			status=EXCLUDED.status`,
		sess.ID,
		sess.Owner,
		sess.Dose,
		sess.Intensity,
		anchors,
		sess.CurrentMode,
		string(sess.Status),
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM modulation_sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Status != StatusExpired && sess.ExpiredAt(s.now()) {
		if err := s.markExpired(ctx, sess.ID); err != nil {
			return nil, err
		}
		sess.Status = StatusExpired
	}
	return &sess, nil
}

// GetActive has no meaning without an owner on a shared backend.
func (s *PostgresStore) GetActive(context.Context) (*Session, error) {
	return nil, ErrOwnerRequired
}

func (s *PostgresStore) GetActiveForOwner(ctx context.Context, owner string) (*Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		   FROM modulation_sessions
		  WHERE owner=$1 AND status IN ($2, $3)
		  ORDER BY created_at DESC
		  LIMIT 1`,
		owner,
		string(StatusInitialized),
		string(StatusActive),
	)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if sess.ExpiredAt(s.now()) {
		if err := s.markExpired(ctx, sess.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &sess, nil
}

// SetActive is a no-op: the active session is whatever the owner query returns.
func (s *PostgresStore) SetActive(context.Context, string) error {
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch Patch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+sessionColumns+` FROM modulation_sessions WHERE id=$1 FOR UPDATE`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lock session: %w", err)
	}
	patch.Apply(&sess)

	anchors := sess.SafetyAnchors
	if anchors == nil {
		anchors = []string{}
	}
	_, err = tx.Exec(ctx,
		`UPDATE modulation_sessions
		    SET dose=$2, intensity=$3, safety_anchors=$4, current_mode=$5, status=$6
		  WHERE id=$1`,
		sess.ID,
		sess.Dose,
		sess.Intensity,
		anchors,
		sess.CurrentMode,
		string(sess.Status),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM modulation_sessions WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM modulation_sessions WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("clear expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) markExpired(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE modulation_sessions SET status=$2 WHERE id=$1 AND status <> $2`,
		id, string(StatusExpired),
	); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (Session, error) {
	var (
		sess   Session
		status string
	)
	if err := row.Scan(
		&sess.ID,
		&sess.Owner,
		&sess.Dose,
		&sess.Intensity,
		&sess.SafetyAnchors,
		&sess.CurrentMode,
		&status,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	); err != nil {
		return Session{}, err
	}
	sess.Status = Status(status)
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return sess, nil
}
