package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInteraction(t *testing.T, text string) *Interaction {
	t.Helper()
	msg := Parse(text)
	require.True(t, msg.IsQuiz())
	return NewInteraction(msg.Quiz)
}

func TestInteraction_StartsPending(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	assert.Equal(t, Pending, in.State())
	assert.Len(t, in.Controls, 5)
	assert.Equal(t, SkipLabel, in.Controls[in.SkipIndex()].Label)
	assert.Equal(t, -1, in.Selected())
}

func TestInteraction_SelectBuildsRequest(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)

	req, ok := in.Select(1)
	require.True(t, ok)
	assert.Equal(t, "b) urgent request to verify your password", req.Answer)
	assert.Equal(t, "b) urgent request to verify your password", req.CorrectAnswer)
	assert.True(t, in.InFlight())
}

func TestInteraction_ResolveCorrect(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	_, ok := in.Select(1)
	require.True(t, ok)

	require.True(t, in.Resolve(GradeResult{Correct: true, XPGained: 50}))
	assert.Equal(t, Resolved, in.State())
	assert.True(t, in.WasCorrect())
	assert.Equal(t, MarkCorrect, in.Controls[1].Mark)
	for i, c := range in.Controls {
		assert.True(t, c.Disabled, "control %d should be disabled", i)
		if i != 1 {
			assert.Equal(t, MarkNone, c.Mark)
		}
	}
}

func TestInteraction_ResolveIncorrectRevealsAnswer(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	_, ok := in.Select(0)
	require.True(t, ok)

	require.True(t, in.Resolve(GradeResult{Correct: false, XPGained: -10}))
	assert.Equal(t, MarkIncorrect, in.Controls[0].Mark)
	assert.Equal(t, MarkCorrect, in.Controls[1].Mark)
	assert.Equal(t, MarkNone, in.Controls[2].Mark)
	assert.Equal(t, MarkNone, in.Controls[in.SkipIndex()].Mark)
}

func TestInteraction_RevealMatchesEveryDuplicate(t *testing.T) {
	in := newTestInteraction(t, "Q\na) yes\nb) no\na) YES\nAnswer: a) yes")
	_, ok := in.Select(1)
	require.True(t, ok)
	in.Resolve(GradeResult{})

	assert.Equal(t, MarkCorrect, in.Controls[0].Mark)
	assert.Equal(t, MarkIncorrect, in.Controls[1].Mark)
	assert.Equal(t, MarkCorrect, in.Controls[2].Mark)
}

func TestInteraction_RevealWithNoMatch(t *testing.T) {
	// A bare letter key matches no full option text, so nothing is revealed.
	in := newTestInteraction(t, "Q\na) one\nb) two\nAnswer: b")
	_, ok := in.Select(0)
	require.True(t, ok)
	in.Resolve(GradeResult{})

	assert.Equal(t, MarkIncorrect, in.Controls[0].Mark)
	assert.Equal(t, MarkNone, in.Controls[1].Mark)
}

func TestInteraction_FirstSelectionWins(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	_, ok := in.Select(0)
	require.True(t, ok)

	_, ok = in.Select(2)
	assert.False(t, ok, "second selection while in flight must be ignored")
	assert.Equal(t, 0, in.Selected())
	assert.False(t, in.Skip(), "skip while in flight must be ignored")
}

func TestInteraction_FailKeepsPending(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	_, ok := in.Select(0)
	require.True(t, ok)

	in.Fail()
	assert.Equal(t, Pending, in.State())
	assert.False(t, in.InFlight())
	for _, c := range in.Controls {
		assert.False(t, c.Disabled)
		assert.Equal(t, MarkNone, c.Mark)
	}

	_, ok = in.Select(2)
	assert.True(t, ok, "a new selection is allowed after a failure")
}

func TestInteraction_Skip(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	require.True(t, in.Skip())
	assert.Equal(t, Skipped, in.State())
	for _, c := range in.Controls {
		assert.True(t, c.Disabled)
	}

	_, ok := in.Select(0)
	assert.False(t, ok)
	assert.False(t, in.Skip())
	assert.False(t, in.Resolve(GradeResult{Correct: true}))
}

func TestInteraction_TerminalIsOneShot(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	_, _ = in.Select(1)
	in.Resolve(GradeResult{Correct: true})

	_, ok := in.Select(0)
	assert.False(t, ok)
	assert.False(t, in.Skip())
	assert.False(t, in.Resolve(GradeResult{Correct: false}))
	assert.Equal(t, MarkCorrect, in.Controls[1].Mark)
}

func TestInteraction_SelectRejectsSkipAndOutOfRange(t *testing.T) {
	in := newTestInteraction(t, sampleQuiz)
	for _, i := range []int{-1, in.SkipIndex(), 42} {
		_, ok := in.Select(i)
		assert.False(t, ok, "index %d", i)
	}
	assert.False(t, in.InFlight())
}
