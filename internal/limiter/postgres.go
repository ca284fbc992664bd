package limiter

import (
	"context"
	"crypto/sha256"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG stores counters in the login_limiter table.
type PG struct {
	q   Querier
	pol Policy
	now func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(q Querier, pol Policy) *PG {
	if pol.MaxFails <= 0 {
		pol = DefaultPolicy()
	}
	return &PG{q: q, pol: pol, now: time.Now}
}

// ClientHash hashes a peer address so raw addresses are never stored.
func ClientHash(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

func key(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Allow reports whether a sign-in is currently allowed.
func (l *PG) Allow(ctx context.Context, email string, client []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_limiter WHERE email = $1 AND client_hash = $2`
	var until time.Time
	err := l.q.QueryRow(ctx, q, key(email), client).Scan(&until)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	if wait := until.Sub(l.now()); wait > 0 {
		return false, wait, nil
	}
	return true, 0, nil
}

// Success resets the counters.
func (l *PG) Success(ctx context.Context, email string, client []byte) error {
	const q = `DELETE FROM login_limiter WHERE email = $1 AND client_hash = $2`
	_, err := l.q.Exec(ctx, q, key(email), client)
	return err
}

// Failure bumps the counter, restarting it when the previous failure fell
// outside the window, and blocks once MaxFails is reached.
func (l *PG) Failure(ctx context.Context, email string, client []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO login_limiter (email, client_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 1, 'epoch', now())
ON CONFLICT (email, client_hash) DO UPDATE SET
  fail_count = CASE
    WHEN now() - login_limiter.updated_at > $3::interval THEN 1
    ELSE login_limiter.fail_count + 1
  END,
  updated_at = now()
RETURNING fail_count`
	k := key(email)
	var fails int
	if err := l.q.QueryRow(ctx, q, k, client, l.pol.Window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.pol.MaxFails {
		return false, 0, nil
	}
	const block = `UPDATE login_limiter SET blocked_until = $3, fail_count = 0 WHERE email = $1 AND client_hash = $2`
	if _, err := l.q.Exec(ctx, block, k, client, l.now().Add(l.pol.BlockFor)); err != nil {
		return false, 0, err
	}
	return true, l.pol.BlockFor, nil
}
