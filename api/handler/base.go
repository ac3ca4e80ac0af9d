package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

// respondAnonError maps a domain error onto the anon envelope.
func (h baseHandler) respondAnonError(ctx *fasthttp.RequestCtx, err error) {
	h.respondJSON(ctx, statusFor(err), transport.NewAnon(false, err.Error()))
}

// respondError keeps the caller's identity and current task list in the
// envelope while reporting the failure.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, identity domain.Identity, tasks []domain.Task, err error) {
	h.respondJSON(ctx, statusFor(err), transport.NewAuthenticated(identity, tasks, false, err.Error()))
}

func statusFor(err error) int {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized
	case domain.IsDomainError(err, domain.ErrCodeAuth),
		domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest
	case domain.IsDomainError(err, domain.ErrCodeIntegrity):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
