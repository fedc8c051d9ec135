package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

const userJSON = `{"user_id":"alice","xp":150,"rank":2,"rank_name":"Security Apprentice","next_rank":{"name":"Security Adept","threshold":250},"interactions":3}`

// fakeBackend mimics the three endpoints and requires the session cookie
// on everything after login.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.UserID == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"User ID is required"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: req.UserID, Path: "/"})
		_, _ = w.Write([]byte(`{"message":"Login successful","user":` + userJSON + `}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Not logged in"}`))
			return
		}
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(`{"answer":"echo: ` + req.Query + `","followup_question":"Q\na) x\nAnswer: a) x","restricted":false,"user":` + userJSON + `}`))
	})
	mux.HandleFunc("/api/quiz", func(w http.ResponseWriter, r *http.Request) {
		var req gradeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Answer == req.CorrectAnswer {
			_, _ = w.Write([]byte(`{"correct":true,"xp_gained":50,"user":` + userJSON + `}`))
			return
		}
		_, _ = w.Write([]byte(`{"correct":false,"xp_gained":-10}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL+"/api/", nil)
	require.NoError(t, err)
	return c
}

func TestClient_LoginCarriesSession(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Chat(ctx, "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Not logged in", apiErr.Message)

	user, err := c.Login(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, 2, user.Rank)
	assert.Equal(t, 250, user.NextRank.Threshold.Value)

	reply, err := c.Chat(ctx, "what is phishing")
	require.NoError(t, err)
	assert.Equal(t, "echo: what is phishing", reply.Answer)
	assert.Contains(t, reply.Followup, "Answer:")
	require.NotNil(t, reply.User)
	assert.Equal(t, 150, reply.User.XP)
}

func TestClient_Grade(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	good, err := c.Grade(ctx, "a) x", "a) x")
	require.NoError(t, err)
	assert.True(t, good.Correct)
	assert.Equal(t, 50, good.Result().XPGained)
	assert.NotNil(t, good.User)

	bad, err := c.Grade(ctx, "b) y", "a) x")
	require.NoError(t, err)
	assert.False(t, bad.Correct)
	assert.Equal(t, -10, bad.XPGained)
	assert.Nil(t, bad.User)
}

func TestClient_LoginRejectsEmptyID(t *testing.T) {
	c, err := New("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			t.Fatal("no request expected for an empty id")
			return nil, nil
		}),
	})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "   ")
	assert.Error(t, err)
}

func TestClient_Unavailable(t *testing.T) {
	c, err := New("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_RejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing answer", `{"restricted":false}`},
		{"bad threshold", `{"answer":"a","user":{"rank":1,"rank_name":"n","xp":0,"next_rank":{"threshold":"soon"}}}`},
		{"negative xp", `{"answer":"a","user":{"rank":1,"rank_name":"n","xp":-5,"next_rank":{"threshold":100}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv)
			_, err := c.Chat(context.Background(), "q")
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "chat", invalid.Endpoint)
		})
	}
}

func TestClient_AcceptsMaxRankAndRestricted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"This topic is restricted based on your current rank.","restricted":true,"user":{"rank":5,"rank_name":"Security Master","xp":1200,"next_rank":{"name":"Maximum Rank Achieved","threshold":"N/A"}}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	reply, err := c.Chat(context.Background(), "zero trust")
	require.NoError(t, err)
	assert.True(t, reply.Restricted)
	require.NotNil(t, reply.User)
	assert.True(t, reply.User.NextRank.Threshold.Max)
}
