// Package api is the HTTP client for the chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/quiz"
)

// DefaultBaseURL is the backend's API root in local development.
const DefaultBaseURL = "http://localhost:8000/api"

// ChatReply is the backend's answer to one chat turn.
type ChatReply struct {
	Answer     string                 `json:"answer"`
	Followup   string                 `json:"followup_question,omitempty"`
	Restricted bool                   `json:"restricted,omitempty"`
	User       *progression.UserState `json:"user,omitempty"`
}

// GradeReply is the backend's verdict on a quiz answer.
type GradeReply struct {
	Correct  bool                   `json:"correct"`
	XPGained int                    `json:"xp_gained"`
	User     *progression.UserState `json:"user,omitempty"`
}

// Result converts the reply into the quiz package's verdict.
func (r GradeReply) Result() quiz.GradeResult {
	return quiz.GradeResult{Correct: r.Correct, XPGained: r.XPGained}
}

type loginRequest struct {
	UserID string `json:"user_id"`
}

type loginResponse struct {
	Message string                `json:"message"`
	User    progression.UserState `json:"user"`
}

type chatRequest struct {
	Query string `json:"query"`
}

type gradeRequest struct {
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the backend. The session cookie set by Login is carried
// on every later request. Each call is a single attempt.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client for baseURL. When httpClient is nil a client with a
// fresh cookie jar is used; a supplied client without a jar gets one.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Login starts a session for userID and returns the user's state.
func (c *Client) Login(ctx context.Context, userID string) (progression.UserState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return progression.UserState{}, errors.New("user id is required")
	}

	var resp loginResponse
	if err := c.doJSON(ctx, "login", loginRequest{UserID: userID}, &resp); err != nil {
		return progression.UserState{}, err
	}
	if resp.User.ID == "" {
		resp.User.ID = userID
	}
	return resp.User, nil
}

// Chat sends one user message.
func (c *Client) Chat(ctx context.Context, query string) (ChatReply, error) {
	var resp ChatReply
	if err := c.doJSON(ctx, "chat", chatRequest{Query: query}, &resp); err != nil {
		return ChatReply{}, err
	}
	return resp, nil
}

// Grade submits a quiz answer. correctAnswer is the client-parsed key; the
// server's verdict is authoritative.
func (c *Client) Grade(ctx context.Context, answer, correctAnswer string) (GradeReply, error) {
	var resp GradeReply
	req := gradeRequest{Answer: answer, CorrectAnswer: correctAnswer}
	if err := c.doJSON(ctx, "quiz", req, &resp); err != nil {
		return GradeReply{}, err
	}
	return resp, nil
}

// doJSON POSTs body to /endpoint, validates the reply against the
// endpoint's schema and decodes it into out.
func (c *Client) doJSON(ctx context.Context, endpoint string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrUnavailable, endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorResponse
		if err := json.Unmarshal(raw, &payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
		return apiErr
	}

	if err := validateBody(endpoint, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidResponse{Endpoint: endpoint, Body: raw, Err: err}
	}
	return nil
}
