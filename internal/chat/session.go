// Package chat sequences a conversation: user turns, bot replies, quiz
// attachments and progression updates, around one authoritative user state.
package chat

import (
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/secmentor/internal/api"
	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/quiz"
)

const (
	// ThinkingText is the placeholder shown while a reply is outstanding.
	ThinkingText = "Thinking..."
	// ApologyText replaces the placeholder when a chat request fails.
	ApologyText = "Sorry, there was an error processing your request. Please try again."
)

// Turn identifies one sent message awaiting its reply.
type Turn struct {
	ID          string
	Query       string
	placeholder int
}

// RankUp records a rank increase announced in the transcript.
type RankUp struct {
	Rank     int
	RankName string
}

// Outcome is what the caller must present after a reply or a grade.
type Outcome struct {
	// ShowXP asks for an XP notification of XPDelta.
	ShowXP  bool
	XPDelta int
	// RankUp is set when the rank rose; the transcript already holds the
	// announcement.
	RankUp *RankUp
	// QuizID is set when a reply attached a quiz.
	QuizID string
	// Restricted is set for turns whose progression was suppressed.
	Restricted bool
	// Change is the applied user-state change, if any.
	Change *progression.Change
}

// Session is the conversation orchestrator. It owns the user state cell,
// the transcript and the quizzes attached to it. Session is driven from a
// single event loop and is not safe for concurrent use.
type Session struct {
	user       *progression.Cell
	transcript Transcript
	quizzes    map[string]*quiz.Interaction
	quizOrder  []string
	newID      func() string
}

// NewSession returns an empty session around cell.
func NewSession(cell *progression.Cell) *Session {
	if cell == nil {
		cell = progression.NewCell()
	}
	return &Session{
		user:    cell,
		quizzes: make(map[string]*quiz.Interaction),
		newID:   func() string { return uuid.New().String() },
	}
}

// User returns the current user state.
func (s *Session) User() (progression.UserState, bool) {
	return s.user.Load()
}

// Cell exposes the state cell for subscribers.
func (s *Session) Cell() *progression.Cell {
	return s.user
}

// Transcript returns the conversation.
func (s *Session) Transcript() *Transcript {
	return &s.transcript
}

// Login installs the state returned by a successful login.
func (s *Session) Login(state progression.UserState) {
	s.user.Replace(state)
}

// Send records a user message and a placeholder reply. Blank text is
// ignored and reports false.
func (s *Session) Send(text string) (Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, false
	}
	s.transcript.Append(Entry{Kind: EntryUser, Text: text})
	idx := s.transcript.Append(Entry{Kind: EntryBot, Text: ThinkingText, Pending: true})
	return Turn{ID: s.newID(), Query: text, placeholder: idx}, true
}

// ApplyReply replaces the turn's placeholder with reply, attaches a quiz or
// plain follow-up, and reconciles progression unless the turn is restricted.
func (s *Session) ApplyReply(turn Turn, reply api.ChatReply) Outcome {
	s.transcript.Replace(turn.placeholder, Entry{Kind: EntryBot, Text: reply.Answer})

	var out Outcome
	if reply.Followup != "" {
		msg := quiz.Parse(reply.Followup)
		if msg.IsQuiz() {
			out.QuizID = s.attachQuiz(msg.Quiz)
		} else {
			s.transcript.Append(Entry{Kind: EntryBot, Text: msg.Text})
		}
	}

	if reply.Restricted {
		out.Restricted = true
		return out
	}
	if reply.User == nil {
		return out
	}

	ch := s.replaceUser(*reply.User, &out)
	if ch.XPDelta != 0 {
		out.ShowXP = true
		out.XPDelta = ch.XPDelta
	}
	return out
}

// FailReply shows the apology in place of the turn's placeholder. Nothing
// else changes.
func (s *Session) FailReply(turn Turn) {
	s.transcript.Replace(turn.placeholder, Entry{Kind: EntryBot, Text: ApologyText})
}

// Quiz returns the interaction for id.
func (s *Session) Quiz(id string) (*quiz.Interaction, bool) {
	in, ok := s.quizzes[id]
	return in, ok
}

// PendingQuizzes returns the IDs of quizzes still awaiting an answer,
// oldest first.
func (s *Session) PendingQuizzes() []string {
	var ids []string
	for _, id := range s.quizOrder {
		if s.quizzes[id].State() == quiz.Pending {
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectOption starts grading option i of quiz id.
func (s *Session) SelectOption(id string, i int) (quiz.GradeRequest, bool) {
	in, ok := s.quizzes[id]
	if !ok {
		return quiz.GradeRequest{}, false
	}
	return in.Select(i)
}

// ApplyGrade resolves quiz id with the server verdict. The XP notification
// is always requested, whatever the value.
func (s *Session) ApplyGrade(id string, reply api.GradeReply) Outcome {
	in, ok := s.quizzes[id]
	if !ok || !in.Resolve(reply.Result()) {
		return Outcome{}
	}

	out := Outcome{ShowXP: true, XPDelta: reply.XPGained}
	if reply.User != nil {
		s.replaceUser(*reply.User, &out)
	}
	return out
}

// FailGrade abandons the in-flight grade of quiz id; the quiz stays open.
func (s *Session) FailGrade(id string) {
	if in, ok := s.quizzes[id]; ok {
		in.Fail()
	}
}

// SkipQuiz declines quiz id without grading.
func (s *Session) SkipQuiz(id string) bool {
	in, ok := s.quizzes[id]
	if !ok {
		return false
	}
	return in.Skip()
}

// Close drops every quiz. The transcript text stays.
func (s *Session) Close() {
	s.quizzes = make(map[string]*quiz.Interaction)
	s.quizOrder = nil
}

func (s *Session) attachQuiz(q *quiz.Quiz) string {
	id := s.newID()
	s.quizzes[id] = quiz.NewInteraction(q)
	s.quizOrder = append(s.quizOrder, id)
	s.transcript.Append(Entry{Kind: EntryQuiz, Text: q.Prompt, QuizID: id})
	return id
}

// replaceUser swaps in next and announces a rank increase.
func (s *Session) replaceUser(next progression.UserState, out *Outcome) progression.Change {
	ch := s.user.Replace(next)
	out.Change = &ch
	if ch.RankedUp {
		out.RankUp = &RankUp{Rank: next.Rank, RankName: next.RankName}
		s.transcript.Append(Entry{
			Kind:     EntryRankUp,
			Rank:     next.Rank,
			RankName: next.RankName,
		})
	}
	return ch
}
