package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

var _ check.Repo = (*CheckRepo)(nil)

type CheckRepo struct {
	db *DB
}

func NewCheckRepo(db *DB) *CheckRepo { return &CheckRepo{db: db} }

const checkColumns = `id, token, name, schedule, grace, status, last_ping_at, last_ping_duration_ms, consecutive_downs, last_error, created_at`

const (
	qInsert = `
INSERT INTO checks (token, name, schedule, grace, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + checkColumns + `;
`

	qGetByToken = `SELECT ` + checkColumns + ` FROM checks WHERE token = $1;`
	qGetByID    = `SELECT ` + checkColumns + ` FROM checks WHERE id = $1;`

	qList       = `SELECT ` + checkColumns + ` FROM checks ORDER BY id;`
	qListActive = `SELECT ` + checkColumns + ` FROM checks WHERE status <> 'maintenance' ORDER BY id;`
	qListPage   = `SELECT ` + checkColumns + ` FROM checks ORDER BY id LIMIT $1 OFFSET $2;`
	qCount      = `SELECT COUNT(*) FROM checks;`

	qLockByToken = `SELECT ` + checkColumns + ` FROM checks WHERE token = $1 FOR UPDATE;`
	qLockByID    = `SELECT ` + checkColumns + ` FROM checks WHERE id = $1 FOR UPDATE;`

	qUpdate = `
UPDATE checks
SET name = $2, schedule = $3, grace = $4, status = $5,
    last_ping_at = $6, last_ping_duration_ms = $7,
    consecutive_downs = $8, last_error = $9
WHERE id = $1;
`

	qDelete = `DELETE FROM checks WHERE token = $1 RETURNING ` + checkColumns + `;`
)

func scanCheck(row pgx.Row, c *check.Check) error {
	if err := row.Scan(
		&c.ID,
		&c.Token,
		&c.Name,
		&c.Schedule,
		&c.Grace,
		&c.Status,
		&c.LastPingAt,
		&c.LastPingDurationMS,
		&c.ConsecutiveDowns,
		&c.LastError,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return check.ErrNotFound
		}
		return fmt.Errorf("scan check: %w", err)
	}
	return nil
}

func (r *CheckRepo) Create(ctx context.Context, c *check.Check) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qInsert, c.Token, c.Name, c.Schedule, c.Grace, c.Status, c.CreatedAt)
	if err := scanCheck(row, c); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return check.ErrConflict
		}
		return err
	}
	return nil
}

func (r *CheckRepo) GetByToken(ctx context.Context, token string) (*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c check.Check
	if err := scanCheck(r.db.Pool.QueryRow(ctx, qGetByToken, token), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckRepo) GetByID(ctx context.Context, id int64) (*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c check.Check
	if err := scanCheck(r.db.Pool.QueryRow(ctx, qGetByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckRepo) list(ctx context.Context, q string, args ...any) ([]*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var out []*check.Check
	for rows.Next() {
		var c check.Check
		if err := scanCheck(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *CheckRepo) List(ctx context.Context) ([]*check.Check, error) {
	return r.list(ctx, qList)
}

func (r *CheckRepo) ListActive(ctx context.Context) ([]*check.Check, error) {
	return r.list(ctx, qListActive)
}

func (r *CheckRepo) ListPage(ctx context.Context, limit, offset int) ([]*check.Check, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out, err := r.list(ctx, qListPage, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	var total int
	if err := r.db.Pool.QueryRow(ctx, qCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checks: %w", err)
	}
	return out, total, nil
}

// updateLocked is the single transactional read-modify-write path: lock the
// row, hand it to fn, and write back only when fn asks for it. Every ping,
// evaluation, and admin mutation for one record funnels through here, which
// is what makes per-token operations linearizable.
func (r *CheckRepo) updateLocked(ctx context.Context, lockQ string, key any, fn check.Mutator) (*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c check.Check
	if err := scanCheck(tx.QueryRow(ctx, lockQ, key), &c); err != nil {
		return nil, err
	}

	write, err := fn(&c)
	if err != nil {
		return nil, err
	}
	if write {
		if _, err := tx.Exec(ctx, qUpdate,
			c.ID, c.Name, c.Schedule, c.Grace, c.Status,
			c.LastPingAt, c.LastPingDurationMS, c.ConsecutiveDowns, c.LastError,
		); err != nil {
			return nil, fmt.Errorf("update check: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &c, nil
}

func (r *CheckRepo) UpdateByToken(ctx context.Context, token string, fn check.Mutator) (*check.Check, error) {
	return r.updateLocked(ctx, qLockByToken, token, fn)
}

func (r *CheckRepo) UpdateByID(ctx context.Context, id int64, fn check.Mutator) (*check.Check, error) {
	return r.updateLocked(ctx, qLockByID, id, fn)
}

func (r *CheckRepo) Delete(ctx context.Context, token string) (*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c check.Check
	if err := scanCheck(r.db.Pool.QueryRow(ctx, qDelete, token), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
