package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveSubscription stores a push subscription, keyed by endpoint.
// Re-registering an endpoint refreshes its keys and keeps its id.
func (s *Store) SaveSubscription(ctx context.Context, sub *PushSubscription) error {
	if sub.Endpoint == "" {
		return fmt.Errorf("subscription endpoint is required")
	}

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	// One statement, so concurrent registrations of an endpoint all get the
	// id of the row that was stored first.
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO push_subscriptions (id, endpoint, expiration_time, p256dh, auth, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			expiration_time = excluded.expiration_time,
			p256dh = excluded.p256dh,
			auth = excluded.auth
		RETURNING id`,
		uuid.NewString(), sub.Endpoint, sub.ExpirationTime, sub.Keys.P256dh, sub.Keys.Auth, nullTime(sub.CreatedAt),
	).Scan(&sub.ID)
	return storeErr("save subscription", err)
}

// DeleteSubscription removes the subscription for endpoint and reports
// whether one existed.
func (s *Store) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return false, storeErr("delete subscription", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete subscription", err)
	}
	return n > 0, nil
}

// ListSubscriptions returns every registered subscription, oldest first.
func (s *Store) ListSubscriptions(ctx context.Context) ([]PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint, expiration_time, COALESCE(p256dh, ''), COALESCE(auth, ''), created_at
		FROM push_subscriptions ORDER BY created_at, id`)
	if err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	defer rows.Close()

	subs := make([]PushSubscription, 0)
	for rows.Next() {
		var sub PushSubscription
		var exp sql.NullInt64
		if err := rows.Scan(&sub.ID, &sub.Endpoint, &exp, &sub.Keys.P256dh, &sub.Keys.Auth, &sub.CreatedAt); err != nil {
			return nil, storeErr("list subscriptions", err)
		}
		if exp.Valid {
			v := exp.Int64
			sub.ExpirationTime = &v
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	return subs, nil
}
