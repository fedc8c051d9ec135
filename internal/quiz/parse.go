// Package quiz turns bot follow-up text into multiple-choice quizzes and
// tracks the lifecycle of each rendered quiz.
package quiz

import (
	"regexp"
	"strings"
)

const (
	answerPrefix  = "answer:"
	optionsPrefix = "options:"
)

// optionLine matches a trimmed line that starts with an option label a-d
// followed by a closing parenthesis.
var optionLine = regexp.MustCompile(`(?i)^[a-d]\)`)

// Kind tags a parsed follow-up.
type Kind int

const (
	KindPlain Kind = iota
	KindQuiz
)

// Quiz is a parsed multiple-choice question. It lives for one bot turn.
type Quiz struct {
	// Prompt is the text with the answer, options label and option lines removed.
	Prompt string
	// Options are the full trimmed option lines, label included, in source order.
	Options []string
	// AnswerKey is the lower-cased answer. It is a hint for highlighting
	// only; the server grades.
	AnswerKey string
}

// Message is the result of Parse: either plain text or a quiz.
type Message struct {
	Kind Kind
	Text string
	Quiz *Quiz
}

// IsQuiz reports whether the message parsed as a quiz.
func (m Message) IsQuiz() bool {
	return m.Kind == KindQuiz && m.Quiz != nil
}

// Parse inspects text for the quiz line conventions. Text without an
// "answer:" line, or with an empty answer, is returned as plain.
func Parse(text string) Message {
	lines := strings.Split(text, "\n")

	key, found := answerKey(lines)
	if !found || key == "" {
		return Message{Kind: KindPlain, Text: text}
	}

	q := &Quiz{AnswerKey: key}
	var prompt []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(lower, answerPrefix):
		case strings.HasPrefix(lower, optionsPrefix):
		case IsOptionLine(line):
			q.Options = append(q.Options, trimmed)
		default:
			prompt = append(prompt, line)
		}
	}
	q.Prompt = strings.Join(prompt, "\n")

	return Message{Kind: KindQuiz, Text: q.Prompt, Quiz: q}
}

// IsOptionLine reports whether line looks like "a) ..." through "d) ...".
func IsOptionLine(line string) bool {
	return optionLine.MatchString(strings.TrimSpace(line))
}

// answerKey finds the first line starting with "answer:" and returns the
// rest of it, trimmed and lower-cased.
func answerKey(lines []string) (string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(strings.ToLower(line), answerPrefix) {
			continue
		}
		rest := line[len(answerPrefix):]
		return strings.ToLower(strings.TrimSpace(rest)), true
	}
	return "", false
}
