package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/token"
	"github.com/tasknest/backend/repository"
)

const (
	// CookieName carries the signed session token on the client.
	CookieName = "tasknest_session"

	sessionKey = "session"

	lookupTimeout = 3 * time.Second
)

// SessionResolver resolves the request's cookie into a session exactly once
// per request and attaches it for handlers. An absent, tampered or expired
// token leaves the request anonymous; only a session store failure aborts
// the request, and it does so with a 500 so "store down" is never mistaken
// for "not logged in".
type SessionResolver struct {
	store  repository.SessionStore
	codec  *token.Codec
	logger *zap.Logger
}

func NewSessionResolver(store repository.SessionStore, codec *token.Codec, logger *zap.Logger) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{
		store:  store,
		codec:  codec,
		logger: logger,
	}
}

// Optional attaches the resolved session when one exists and always calls
// the next handler.
func (m *SessionResolver) Optional(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !m.attach(ctx) {
			return
		}
		next(ctx)
	}
}

// Required rejects anonymous requests with the 401 anon envelope.
func (m *SessionResolver) Required(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !m.attach(ctx) {
			return
		}
		if _, ok := SessionFrom(ctx); !ok {
			respondAnon(ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(ctx)
	}
}

// attach reports false when the request was already answered.
func (m *SessionResolver) attach(ctx *fasthttp.RequestCtx) bool {
	raw := string(ctx.Request.Header.Cookie(CookieName))
	if raw == "" {
		return true
	}

	sessionID, err := m.codec.Parse(raw)
	if err != nil {
		m.logger.Debug("rejected session cookie", zap.Error(err))
		return true
	}

	lookupCtx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	session, err := m.store.Get(lookupCtx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return true
		}
		m.logger.Error("session lookup failed", zap.Error(err))
		respondAnon(ctx, http.StatusInternalServerError, "session lookup failed")
		return false
	}

	ctx.SetUserValue(sessionKey, session)
	return true
}

// SessionFrom returns the session attached by the resolver, if any.
func SessionFrom(ctx *fasthttp.RequestCtx) (*domain.Session, bool) {
	session, ok := ctx.UserValue(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

func respondAnon(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewAnon(false, message))
	ctx.SetBody(body)
}
