package chat

// EntryKind identifies what a transcript entry shows.
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryBot
	EntryQuiz
	EntryRankUp
)

// Entry is one item of the conversation as the user sees it.
type Entry struct {
	Kind EntryKind
	Text string
	// Pending marks the "Thinking..." placeholder of an unanswered turn.
	Pending bool
	// QuizID links an EntryQuiz to its interaction.
	QuizID string
	// Rank and RankName are set on EntryRankUp.
	Rank     int
	RankName string
}

// Transcript is the ordered conversation. Entries are only appended or
// replaced in place, so an index stays valid for the transcript's lifetime.
type Transcript struct {
	entries []Entry
}

// Append adds e and returns its index.
func (t *Transcript) Append(e Entry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// Replace overwrites the entry at i. Out-of-range indexes are ignored.
func (t *Transcript) Replace(i int, e Entry) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	t.entries[i] = e
}

// At returns the entry at i.
func (t *Transcript) At(i int) (Entry, bool) {
	if i < 0 || i >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns the entries in order. The slice must not be modified.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}
