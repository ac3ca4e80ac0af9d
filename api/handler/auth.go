package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/internal/token"
	"github.com/tasknest/backend/pkg/httpcontext"
	authUC "github.com/tasknest/backend/usecase/auth"
	taskUC "github.com/tasknest/backend/usecase/task"
)

type AuthHandler struct {
	baseHandler
	auth  *authUC.UseCase
	tasks *taskUC.UseCase
	codec *token.Codec
}

func NewAuthHandler(auth *authUC.UseCase, tasks *taskUC.UseCase, codec *token.Codec, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		auth:        auth,
		tasks:       tasks,
		codec:       codec,
	}
}

// Login authenticates the credentials, establishes a session and returns the
// authenticated full-state envelope with the session cookie set.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewAnon(false, "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.auth.Login(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondAnonError(ctx, err)
		return
	}

	tasks, err := h.tasks.List(stdCtx, session.Identity.UserID)
	if err != nil {
		h.respondError(ctx, session.Identity, nil, err)
		return
	}

	signed, err := h.codec.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		h.respondAnonError(ctx, domain.WrapError(domain.ErrCodeInternal, "failed to issue session token", err))
		return
	}

	setSessionCookie(ctx, signed, session.ExpiresAt)
	h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, true, "logged in"))
}

// State serves session resume and page reloads: the envelope reflects
// whichever state the caller is in, and "not logged in" is never an error.
func (h *AuthHandler) State(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusOK, transport.NewAnon(true, "not logged in"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.tasks.List(stdCtx, session.Identity.UserID)
	if err != nil {
		h.respondError(ctx, session.Identity, nil, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, true, "logged in"))
}

// Logout revokes the session. Calling it without one succeeds at the HTTP
// level and reports the state in the envelope.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusOK, transport.NewAnon(false, "already logged out"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.auth.Logout(stdCtx, session.ID); err != nil {
		h.respondAnonError(ctx, domain.WrapError(domain.ErrCodeInternal, "failed to revoke session", err))
		return
	}

	clearSessionCookie(ctx)
	h.respondJSON(ctx, http.StatusOK, transport.NewAnon(true, "logged out"))
}

func setSessionCookie(ctx *fasthttp.RequestCtx, value string, expiresAt time.Time) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.CookieName)
	cookie.SetValue(value)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expiresAt)
	ctx.Response.Header.SetCookie(cookie)
}

func clearSessionCookie(ctx *fasthttp.RequestCtx) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.CookieName)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}
