package secevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists security events to Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const insertEventSQL = `
INSERT INTO security_events (id, kind, user_id, client_ip, detail, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

// Insert writes one event. Duplicate IDs are treated as already delivered,
// which makes task retries idempotent.
func (s Store) Insert(ctx context.Context, ev Event) error {
	if s.Pool == nil {
		return errors.New("secevent: pool not configured")
	}
	detail, err := json.Marshal(ev.Detail)
	if err != nil {
		return fmt.Errorf("marshal detail: %w", err)
	}
	_, err = s.Pool.Exec(ctx, insertEventSQL, ev.ID, string(ev.Kind), nullable(ev.UserID), nullable(ev.ClientIP), detail, ev.OccurredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
