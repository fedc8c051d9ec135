package quiz

import "strings"

// SkipLabel is the label of the control that declines a quiz.
const SkipLabel = "I don't want to answer"

// State is the lifecycle state of a rendered quiz.
type State int

const (
	Pending State = iota
	Resolved
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Mark is the visual verdict on a control.
type Mark int

const (
	MarkNone Mark = iota
	MarkCorrect
	MarkIncorrect
)

// Control is one button of a quiz widget.
type Control struct {
	Label    string
	Mark     Mark
	Disabled bool
	Skip     bool
}

// GradeRequest is what the server needs to grade a selection.
type GradeRequest struct {
	Answer        string
	CorrectAnswer string
}

// GradeResult is the server's verdict on a selection.
type GradeResult struct {
	Correct  bool
	XPGained int
}

// Interaction is the state machine of one rendered quiz. It starts Pending
// and moves once to Resolved or Skipped. A selection stays in flight until
// Resolve or Fail; further selections in that window are ignored.
type Interaction struct {
	Quiz     *Quiz
	Controls []Control

	state      State
	selected   int
	wasCorrect bool
	inFlight   bool
}

// NewInteraction builds the widget state for q: one control per option and
// a trailing skip control.
func NewInteraction(q *Quiz) *Interaction {
	controls := make([]Control, 0, len(q.Options)+1)
	for _, opt := range q.Options {
		controls = append(controls, Control{Label: opt})
	}
	controls = append(controls, Control{Label: SkipLabel, Skip: true})
	return &Interaction{
		Quiz:     q,
		Controls: controls,
		selected: -1,
	}
}

// State returns the current lifecycle state.
func (in *Interaction) State() State { return in.state }

// Selected returns the index of the graded option, or -1.
func (in *Interaction) Selected() int { return in.selected }

// WasCorrect reports the verdict once Resolved.
func (in *Interaction) WasCorrect() bool { return in.wasCorrect }

// InFlight reports whether a grading request is outstanding.
func (in *Interaction) InFlight() bool { return in.inFlight }

// SkipIndex returns the index of the skip control.
func (in *Interaction) SkipIndex() int { return len(in.Controls) - 1 }

// Select starts grading option i. It returns false when the selection is
// not accepted: the quiz is no longer pending, a request is already in
// flight, the control is disabled, or i is not an answer option.
func (in *Interaction) Select(i int) (GradeRequest, bool) {
	if in.state != Pending || in.inFlight {
		return GradeRequest{}, false
	}
	if i < 0 || i >= len(in.Controls) {
		return GradeRequest{}, false
	}
	c := in.Controls[i]
	if c.Disabled || c.Skip {
		return GradeRequest{}, false
	}

	in.inFlight = true
	in.selected = i
	return GradeRequest{
		Answer:        strings.ToLower(strings.TrimSpace(c.Label)),
		CorrectAnswer: in.Quiz.AnswerKey,
	}, true
}

// Resolve applies the server verdict for the in-flight selection.
func (in *Interaction) Resolve(res GradeResult) bool {
	if in.state != Pending || !in.inFlight {
		return false
	}
	in.inFlight = false

	if res.Correct {
		in.Controls[in.selected].Mark = MarkCorrect
	} else {
		in.Controls[in.selected].Mark = MarkIncorrect
		for i := range in.Controls {
			c := &in.Controls[i]
			if c.Skip {
				continue
			}
			if strings.ToLower(strings.TrimSpace(c.Label)) == in.Quiz.AnswerKey {
				c.Mark = MarkCorrect
			}
		}
	}

	in.wasCorrect = res.Correct
	in.state = Resolved
	in.disableAll()
	return true
}

// Fail drops the in-flight selection. The quiz stays pending and every
// control stays usable.
func (in *Interaction) Fail() {
	if in.state != Pending {
		return
	}
	in.inFlight = false
	in.selected = -1
}

// Skip declines the quiz. No grading happens.
func (in *Interaction) Skip() bool {
	if in.state != Pending || in.inFlight {
		return false
	}
	in.state = Skipped
	in.disableAll()
	return true
}

func (in *Interaction) disableAll() {
	for i := range in.Controls {
		in.Controls[i].Disabled = true
	}
}
