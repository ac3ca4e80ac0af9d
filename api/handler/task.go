package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/pkg/httpcontext"
	taskUC "github.com/tasknest/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Create stores a new task for the caller and returns the refreshed list.
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewAnon(false, "unauthorized"))
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewAuthenticated(session.Identity, nil, false, "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Create(stdCtx, session.Identity.UserID, req.Title, req.Description)
	if err != nil {
		h.respondError(ctx, session.Identity, h.currentTasks(stdCtx, session.Identity.UserID), err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, true, "task created"))
}

// Update rewrites a task the caller owns. A cross-owner or unknown id is
// reported in the envelope but the request itself is processed, not failed.
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewAnon(false, "unauthorized"))
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewAuthenticated(session.Identity, nil, false, "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	matched, tasks, err := h.uc.Update(stdCtx, session.Identity.UserID, req.ID, req.Title, req.Description)
	if err != nil {
		h.respondError(ctx, session.Identity, h.currentTasks(stdCtx, session.Identity.UserID), err)
		return
	}
	if !matched {
		h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, false, "no matching task"))
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, true, "task updated"))
}

// Delete removes a task the caller owns, with Update's no-op semantics.
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewAnon(false, "unauthorized"))
		return
	}

	var req transport.TaskDeleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewAuthenticated(session.Identity, nil, false, "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	matched, tasks, err := h.uc.Delete(stdCtx, session.Identity.UserID, req.ID)
	if err != nil {
		h.respondError(ctx, session.Identity, h.currentTasks(stdCtx, session.Identity.UserID), err)
		return
	}
	if !matched {
		h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, false, "no matching task"))
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewAuthenticated(session.Identity, tasks, true, "task deleted"))
}

// currentTasks re-reads the caller's list so failure envelopes still carry
// full current state. A best-effort read; a nil list is serialized as [].
func (h *TaskHandler) currentTasks(ctx context.Context, ownerID int64) []domain.Task {
	tasks, err := h.uc.List(ctx, ownerID)
	if err != nil {
		h.logger.Error("failed to read task list", zap.Error(err))
		return nil
	}
	return tasks
}
