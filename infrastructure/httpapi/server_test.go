package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collab-notes/contract"
	"collab-notes/domain"
	"collab-notes/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users      []domain.User
	candidates []domain.Candidate
}

func (f *fakeDirectory) Signup(name, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return domain.User{}, errors.ErrEmailExists
		}
	}
	user := domain.User{ID: uuid.NewString(), Name: name, Email: email}
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeDirectory) Login(email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, errors.ErrInvalidCredentials
}

func (f *fakeDirectory) ListUsers() ([]domain.User, error) { return f.users, nil }

func (f *fakeDirectory) CreateCandidate(name, email string) (domain.Candidate, error) {
	candidate := domain.Candidate{ID: uuid.NewString(), Name: name, Email: email}
	f.candidates = append(f.candidates, candidate)
	return candidate, nil
}

func (f *fakeDirectory) ListCandidates() ([]domain.Candidate, error) { return f.candidates, nil }

type fakeNotes struct {
	messages      []domain.Message
	notifications []domain.Notification
	markedRead    []string
	unread        int64
}

func (f *fakeNotes) PostMessage(domain.PostMessageCommand, contract.EventSink) {}
func (f *fakeNotes) JoinRoom(string, domain.RoomID, domain.User, contract.EventSink) {
}
func (f *fakeNotes) Disconnect(string) {}
func (f *fakeNotes) History(candidateID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.CandidateID == candidateID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (f *fakeNotes) Notifications(_ context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
func (f *fakeNotes) MarkAllRead(_ context.Context, userID string) error {
	f.markedRead = append(f.markedRead, userID)
	return nil
}
func (f *fakeNotes) UnreadCount(context.Context, string) (int64, error) { return f.unread, nil }

func newTestApp(directory *fakeDirectory, notes *fakeNotes) *fiber.App {
	app := fiber.New()
	NewServer(slog.Default(), directory, notes).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func Test_Signup_And_Duplicate(t *testing.T) {
	req := require.New(t)
	app := newTestApp(&fakeDirectory{}, &fakeNotes{})

	resp := postJSON(t, app, "/api/signup", map[string]string{
		"name": "Jane Doe", "email": "jane@corp.test", "password": "secret",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	req.Equal("Jane Doe", body["user"].(map[string]any)["name"])

	resp = postJSON(t, app, "/api/signup", map[string]string{
		"name": "Jane Again", "email": "jane@corp.test", "password": "secret",
	})
	req.Equal(http.StatusConflict, resp.StatusCode)
}

func Test_Signup_Missing_Fields(t *testing.T) {
	req := require.New(t)
	app := newTestApp(&fakeDirectory{}, &fakeNotes{})

	resp := postJSON(t, app, "/api/signup", map[string]string{"name": "Jane Doe"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_Login_Unknown_Email(t *testing.T) {
	req := require.New(t)
	app := newTestApp(&fakeDirectory{}, &fakeNotes{})

	resp := postJSON(t, app, "/api/login", map[string]string{"email": "ghost@corp.test"})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func Test_Messages_Require_CandidateID(t *testing.T) {
	req := require.New(t)
	app := newTestApp(&fakeDirectory{}, &fakeNotes{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	req.NoError(err)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_Messages_For_Candidate(t *testing.T) {
	req := require.New(t)
	notes := &fakeNotes{messages: []domain.Message{
		{ID: uuid.New(), CandidateID: "cand-1", UserID: "u1", UserName: "Alice", Text: "hi", CreatedAt: time.Now()},
		{ID: uuid.New(), CandidateID: "cand-2", UserID: "u1", UserName: "Alice", Text: "other", CreatedAt: time.Now()},
	}}
	app := newTestApp(&fakeDirectory{}, notes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/messages?candidateId=cand-1", nil))
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	req.Len(body["messages"], 1)
}

func Test_MarkAllRead(t *testing.T) {
	req := require.New(t)
	notes := &fakeNotes{}
	app := newTestApp(&fakeDirectory{}, notes)

	resp := postJSON(t, app, "/api/notifications/read", map[string]string{"userId": "u1"})
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal([]string{"u1"}, notes.markedRead)
}

func Test_Unread_Count(t *testing.T) {
	req := require.New(t)
	app := newTestApp(&fakeDirectory{}, &fakeNotes{unread: 3})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/notifications/unread?userId=u1", nil))
	req.NoError(err)
	body := decodeBody(t, resp)
	req.EqualValues(3, body["count"])
}
