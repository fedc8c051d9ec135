package chat

import (
	"github.com/abhisek/secmentor/internal/api"
	convo "github.com/abhisek/secmentor/internal/chat"
)

// chatReplyMsg is the backend's answer to one sent turn.
type chatReplyMsg struct {
	Turn  convo.Turn
	Reply api.ChatReply
	Err   error
}

// gradeResultMsg is the backend's verdict on a quiz selection.
type gradeResultMsg struct {
	QuizID string
	Reply  api.GradeReply
	Err    error
}
