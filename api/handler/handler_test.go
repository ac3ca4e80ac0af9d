package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasknest/backend/api/handler"
	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/config"
	"github.com/tasknest/backend/internal/infrastructure/monitor"
	sqliteInfra "github.com/tasknest/backend/internal/infrastructure/sqlite"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/internal/router"
	"github.com/tasknest/backend/internal/token"
	"github.com/tasknest/backend/pkg/httpcontext"
	"github.com/tasknest/backend/repository"
	"github.com/tasknest/backend/repository/memory"
	sqliteRepo "github.com/tasknest/backend/repository/sqlite"
	authUC "github.com/tasknest/backend/usecase/auth"
	taskUC "github.com/tasknest/backend/usecase/task"
)

type testServer struct {
	handler fasthttp.RequestHandler
	codec   *token.Codec
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithSessions(t, memory.NewSessionStore(nil))
}

func newTestServerWithSessions(t *testing.T, sessions repository.SessionStore) *testServer {
	t.Helper()

	db, err := sqliteInfra.Open(context.Background(), config.SQLiteConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqliteRepo.NewUserRepository(db)
	taskRepo := sqliteRepo.NewTaskRepository(db)

	codec := token.NewCodec("test-secret", "tasknest")
	auth := authUC.New(userRepo, sessions, time.Hour, nil)
	tasks := taskUC.New(taskRepo, nil)

	healthy := monitor.PingerFunc(func(ctx context.Context) error { return nil })
	mon := monitor.New(healthy, healthy, time.Minute, nil)
	mon.Start()
	t.Cleanup(mon.Stop)

	adapter := httpcontext.NewAdapter(5 * time.Second)
	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(auth, tasks, codec, adapter, nil),
		Task:   apiHandler.NewTaskHandler(tasks, adapter, nil),
		Health: apiHandler.NewHealthHandler(mon, adapter, nil),
	}
	resolver := middleware.NewSessionResolver(sessions, codec, nil)

	return &testServer{
		handler: router.New(handlers, resolver).Handler,
		codec:   codec,
	}
}

func (s *testServer) do(t *testing.T, method, path, body, cookie string) *fasthttp.RequestCtx {
	t.Helper()

	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	if cookie != "" {
		req.Header.SetCookie(middleware.CookieName, cookie)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.handler(ctx)
	return ctx
}

func (s *testServer) login(t *testing.T, username, password string) (transport.Envelope, string) {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	ctx := s.do(t, http.MethodPost, "/login", body, "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	return decodeEnvelope(t, ctx), sessionCookie(t, ctx)
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var envelope transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	return envelope
}

func sessionCookie(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.CookieName)
	require.True(t, ctx.Response.Header.Cookie(cookie))
	return string(cookie.Value())
}

func taskID(t *testing.T, envelope transport.Envelope, title string) int64 {
	t.Helper()
	for _, task := range envelope.Tasks {
		if task.Title == title {
			return task.ID
		}
	}
	t.Fatalf("no task titled %q in envelope", title)
	return 0
}

func TestLoginSuccess(t *testing.T) {
	srv := newTestServer(t)

	envelope, cookie := srv.login(t, "user1", "password1")
	assert.True(t, envelope.Success)
	assert.Equal(t, "logged in", envelope.Message)
	assert.Equal(t, int64(1), envelope.UserID)
	assert.Equal(t, "user1", envelope.Username)
	require.Len(t, envelope.Tasks, 1)
	assert.Equal(t, "title 11", envelope.Tasks[0].Title)
	assert.NotEmpty(t, cookie)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)

	ctx := srv.do(t, http.MethodPost, "/login", `{"username":"user1","password":"wrong"}`, "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, domain.AnonUserID, envelope.UserID)
	assert.Equal(t, domain.AnonUsername, envelope.Username)
	assert.Empty(t, envelope.Tasks)
}

func TestLoginMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	ctx := srv.do(t, http.MethodPost, "/login", `{"username":`, "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.Equal(t, "invalid payload", envelope.Message)
}

func TestLoginEmptyCredentials(t *testing.T) {
	srv := newTestServer(t)

	// Empty credentials run the lookup and report zero matches, same as any
	// other wrong credential pair.
	ctx := srv.do(t, http.MethodPost, "/login", `{"username":"","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, "no user found", envelope.Message)
	assert.Equal(t, domain.AnonUserID, envelope.UserID)
}

func TestDataAnonymous(t *testing.T) {
	srv := newTestServer(t)

	ctx := srv.do(t, http.MethodGet, "/data", "", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.True(t, envelope.Success)
	assert.Equal(t, "not logged in", envelope.Message)
	assert.Equal(t, domain.AnonUserID, envelope.UserID)
	assert.Equal(t, domain.AnonUsername, envelope.Username)

	// The anonymous task list serializes as [], never null.
	assert.Contains(t, string(ctx.Response.Body()), `"tasks":[]`)
}

func TestDataTamperedCookieIsAnonymous(t *testing.T) {
	srv := newTestServer(t)

	ctx := srv.do(t, http.MethodGet, "/data", "", "garbage-token")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.Equal(t, "not logged in", envelope.Message)
	assert.Equal(t, domain.AnonUserID, envelope.UserID)
}

func TestDataResumesSession(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := srv.login(t, "user2", "password2")

	ctx := srv.do(t, http.MethodGet, "/data", "", cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(2), envelope.UserID)
	assert.Len(t, envelope.Tasks, 2)
}

func TestTaskCreate(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := srv.login(t, "user1", "password1")

	ctx := srv.do(t, http.MethodPost, "/task", `{"task_title":"buy milk","task_description":"2%"}`, cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.True(t, envelope.Success)
	assert.Equal(t, "task created", envelope.Message)
	require.Len(t, envelope.Tasks, 2)
	assert.Equal(t, "buy milk", envelope.Tasks[1].Title)
	assert.Equal(t, "2%", envelope.Tasks[1].Description)
}

func TestTaskCreateDuplicateTitle(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := srv.login(t, "user1", "password1")

	// "title 21" belongs to user2; titles are unique across all owners.
	ctx := srv.do(t, http.MethodPost, "/task", `{"task_title":"title 21"}`, cookie)
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, int64(1), envelope.UserID)
	assert.Len(t, envelope.Tasks, 1)
}

func TestTaskCreateBlankTitle(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := srv.login(t, "user1", "password1")

	ctx := srv.do(t, http.MethodPost, "/task", `{"task_title":"  "}`, cookie)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Len(t, envelope.Tasks, 1)
}

func TestTaskRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	ctx := srv.do(t, http.MethodPost, "/task", `{"task_title":"sneaky"}`, "")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, domain.AnonUserID, envelope.UserID)
}

func TestTaskUpdate(t *testing.T) {
	srv := newTestServer(t)

	envelope, cookie := srv.login(t, "user1", "password1")
	id := taskID(t, envelope, "title 11")

	body := fmt.Sprintf(`{"task_id":%d,"task_title":"renamed","task_description":"new text"}`, id)
	ctx := srv.do(t, http.MethodPut, "/task", body, cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	updated := decodeEnvelope(t, ctx)
	assert.True(t, updated.Success)
	assert.Equal(t, "task updated", updated.Message)
	require.Len(t, updated.Tasks, 1)
	assert.Equal(t, "renamed", updated.Tasks[0].Title)
}

func TestTaskUpdateCrossOwnerIsNoOp(t *testing.T) {
	srv := newTestServer(t)

	victim, _ := srv.login(t, "user2", "password2")
	targetID := taskID(t, victim, "title 21")

	_, cookie := srv.login(t, "user1", "password1")

	body := fmt.Sprintf(`{"task_id":%d,"task_title":"hijacked"}`, targetID)
	ctx := srv.do(t, http.MethodPut, "/task", body, cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, "no matching task", envelope.Message)
	assert.Len(t, envelope.Tasks, 1)

	// The victim's task is untouched.
	after, _ := srv.login(t, "user2", "password2")
	assert.Equal(t, targetID, taskID(t, after, "title 21"))
}

func TestTaskDelete(t *testing.T) {
	srv := newTestServer(t)

	envelope, cookie := srv.login(t, "user1", "password1")
	id := taskID(t, envelope, "title 11")

	body := fmt.Sprintf(`{"task_id":%d}`, id)
	ctx := srv.do(t, http.MethodDelete, "/task", body, cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	deleted := decodeEnvelope(t, ctx)
	assert.True(t, deleted.Success)
	assert.Equal(t, "task deleted", deleted.Message)
	assert.Empty(t, deleted.Tasks)

	// Deleting an already-deleted task is processed, not failed.
	ctx = srv.do(t, http.MethodDelete, "/task", body, cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	again := decodeEnvelope(t, ctx)
	assert.False(t, again.Success)
	assert.Equal(t, "no matching task", again.Message)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := srv.login(t, "user1", "password1")

	ctx := srv.do(t, http.MethodDelete, "/logout", "", cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.True(t, envelope.Success)
	assert.Equal(t, "logged out", envelope.Message)

	// The revoked cookie no longer resolves to a session.
	ctx = srv.do(t, http.MethodGet, "/data", "", cookie)
	resumed := decodeEnvelope(t, ctx)
	assert.Equal(t, "not logged in", resumed.Message)

	// Logging out again reports the state without failing the request.
	ctx = srv.do(t, http.MethodDelete, "/logout", "", cookie)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	again := decodeEnvelope(t, ctx)
	assert.False(t, again.Success)
	assert.Equal(t, "already logged out", again.Message)
}

type failingSessionStore struct{}

func (failingSessionStore) Save(ctx context.Context, session *domain.Session) error {
	return errors.New("store down")
}

func (failingSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return nil, errors.New("store down")
}

func (failingSessionStore) Delete(ctx context.Context, id string) error {
	return errors.New("store down")
}

func (failingSessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, errors.New("store down")
}

func TestSessionStoreFailureIsNotAnonymous(t *testing.T) {
	srv := newTestServerWithSessions(t, failingSessionStore{})

	signed, err := srv.codec.Issue("sid-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	ctx := srv.do(t, http.MethodGet, "/data", "", signed)
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())

	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, "session lookup failed", envelope.Message)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	require.Eventually(t, func() bool {
		ctx := srv.do(t, http.MethodGet, "/health", "", "")
		return ctx.Response.StatusCode() == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	ctx := srv.do(t, http.MethodGet, "/health", "", "")
	assert.Contains(t, string(ctx.Response.Body()), `"storage":true`)
	assert.Contains(t, string(ctx.Response.Body()), `"sessions":true`)
}
