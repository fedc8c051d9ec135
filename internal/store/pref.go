package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SessionUserKey is the preference holding the last logged-in user ID.
const SessionUserKey = "chatbot_user_id"

// PrefRepo stores small string preferences by key.
type PrefRepo interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type prefRepo struct {
	db *sql.DB
}

func (r *prefRepo) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := builder().
		Select("value").
		From(entsql.Table("prefs")).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get pref %q: %w", key, err)
	}
	return value, true, nil
}

func (r *prefRepo) Set(ctx context.Context, key, value string) error {
	query, args := builder().
		Insert("prefs").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().Unix()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

func (r *prefRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().
		Delete("prefs").
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete pref %q: %w", key, err)
	}
	return nil
}
