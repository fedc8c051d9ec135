package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/secmentor/internal/store"
)

type fakeJournal struct {
	summary store.Summary
	events  []store.Event
	err     error
	limit   int
}

func (f *fakeJournal) Append(context.Context, store.Event) error { return nil }
func (f *fakeJournal) Summary(context.Context) (store.Summary, error) {
	return f.summary, f.err
}
func (f *fakeJournal) Recent(_ context.Context, limit int) ([]store.Event, error) {
	f.limit = limit
	return f.events, nil
}

func load(t *testing.T, s *ActivityScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected load command")
	}
	s.Update(cmd())
}

func TestActivityShowsTotalsAndRecent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	j := &fakeJournal{
		summary: store.Summary{Logins: 2, Turns: 5, Restricted: 1, QuizAnswered: 2, QuizCorrect: 1, XPEarned: 70},
		events: []store.Event{
			{Timestamp: ts, Kind: store.EventQuiz, Correct: true, XPDelta: 50},
			{Timestamp: ts, Kind: store.EventChat, Restricted: true},
		},
	}
	s := New(j, nil)
	if !strings.Contains(s.View(80, 20), "Loading") {
		t.Error("expected loading state before the journal answers")
	}
	load(t, s)

	if j.limit != RecentLimit {
		t.Errorf("limit = %d, want %d", j.limit, RecentLimit)
	}
	view := s.View(80, 20)
	for _, want := range []string{"5 (1 restricted)", "2 answered, 1 correct", "70", "✓ +50 XP", "restricted", "Mar 01 09:30"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestActivityEmptyJournal(t *testing.T) {
	s := New(&fakeJournal{}, nil)
	load(t, s)
	if !strings.Contains(s.View(80, 20), "No activity recorded yet.") {
		t.Error("expected empty message")
	}
}

func TestActivityLoadError(t *testing.T) {
	s := New(&fakeJournal{err: errors.New("disk gone")}, nil)
	load(t, s)
	if !strings.Contains(s.View(80, 20), "disk gone") {
		t.Error("expected error in view")
	}
}

func TestActivityListFitsHeight(t *testing.T) {
	j := &fakeJournal{summary: store.Summary{Turns: 20}}
	for i := 0; i < RecentLimit; i++ {
		j.events = append(j.events, store.Event{Kind: store.EventChat, XPDelta: 10})
	}
	s := New(j, nil)
	load(t, s)

	if got := strings.Count(s.View(80, 12), "+10 XP"); got != 3 {
		t.Errorf("listed %d events in 12 rows, want 3", got)
	}
}
