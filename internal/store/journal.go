package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// EventKind classifies journal events.
type EventKind string

const (
	EventLogin EventKind = "login"
	EventChat  EventKind = "chat"
	EventQuiz  EventKind = "quiz"
	EventSkip  EventKind = "skip"
)

// Event is one journal record. Quiz text and answers are never stored, only
// their outcome.
type Event struct {
	ID         string
	Seq        int64
	Timestamp  time.Time
	Kind       EventKind
	UserID     string
	Restricted bool
	Correct    bool
	XPDelta    int
	XP         int
	Rank       int
	RankName   string
}

// Summary aggregates the journal.
type Summary struct {
	Logins       int
	Turns        int
	Restricted   int
	QuizAnswered int
	QuizCorrect  int
	QuizSkipped  int
	XPEarned     int
	LastXP       int
	LastRank     int
	LastRankName string
	LastSeen     time.Time
}

// JournalRepo appends and aggregates client activity.
type JournalRepo interface {
	// Append records e. ID and Timestamp are filled in when empty.
	Append(ctx context.Context, e Event) error

	// Summary aggregates every recorded event.
	Summary(ctx context.Context) (Summary, error)

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
}

type journalRepo struct {
	db *sql.DB
}

var journalColumns = []string{"seq", "id", "ts", "kind", "user_id", "restricted", "correct", "xp_delta", "xp", "rank", "rank_name"}

func (r *journalRepo) Append(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query, args := builder().
		Insert("journal").
		Columns(journalColumns[1:]...).
		Values(e.ID, e.Timestamp.Unix(), string(e.Kind), e.UserID,
			boolInt(e.Restricted), boolInt(e.Correct), e.XPDelta, e.XP, e.Rank, e.RankName).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append %s event: %w", e.Kind, err)
	}
	return nil
}

func (r *journalRepo) Summary(ctx context.Context) (Summary, error) {
	var sum Summary

	query, args := builder().
		Select("kind", entsql.Count("*"), entsql.Sum("xp_delta"), entsql.Sum("correct"), entsql.Sum("restricted")).
		From(entsql.Table("journal")).
		GroupBy("kind").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return sum, fmt.Errorf("summarize journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind                    string
			count                   int
			xp, correct, restricted sql.NullInt64
		)
		if err := rows.Scan(&kind, &count, &xp, &correct, &restricted); err != nil {
			return sum, fmt.Errorf("scan journal summary: %w", err)
		}
		switch EventKind(kind) {
		case EventLogin:
			sum.Logins = count
		case EventChat:
			sum.Turns = count
			sum.Restricted = int(restricted.Int64)
			sum.XPEarned += int(xp.Int64)
		case EventQuiz:
			sum.QuizAnswered = count
			sum.QuizCorrect = int(correct.Int64)
			sum.XPEarned += int(xp.Int64)
		case EventSkip:
			sum.QuizSkipped = count
		}
	}
	if err := rows.Err(); err != nil {
		return sum, fmt.Errorf("read journal summary: %w", err)
	}

	last, err := r.latestWithRank(ctx)
	if err != nil {
		return sum, err
	}
	if last != nil {
		sum.LastXP = last.XP
		sum.LastRank = last.Rank
		sum.LastRankName = last.RankName
		sum.LastSeen = last.Timestamp
	}
	return sum, nil
}

func (r *journalRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args := builder().
		Select(journalColumns...).
		From(entsql.Table("journal")).
		OrderBy(entsql.Desc("seq")).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *journalRepo) latestWithRank(ctx context.Context) (*Event, error) {
	query, args := builder().
		Select(journalColumns...).
		From(entsql.Table("journal")).
		Where(entsql.GT("rank", 0)).
		OrderBy(entsql.Desc("seq")).
		Limit(1).
		Query()

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (Event, error) {
	var (
		e                   Event
		ts                  int64
		kind                string
		restricted, correct int
	)
	err := row.Scan(&e.Seq, &e.ID, &ts, &kind, &e.UserID, &restricted, &correct,
		&e.XPDelta, &e.XP, &e.Rank, &e.RankName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan event: %w", err)
	}
	e.Timestamp = time.Unix(ts, 0)
	e.Kind = EventKind(kind)
	e.Restricted = restricted != 0
	e.Correct = correct != 0
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
