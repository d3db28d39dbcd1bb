package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/repository"
	taskUC "github.com/fastygo/taskmanager/usecase/task"
)

// HealthMessage is the liveness body of GET /api/tasks/health.
const HealthMessage = "Task Management API is running!"

type TaskHandler struct {
	baseHandler
	uc        *taskUC.UseCase
	validator *transport.Validator
}

func NewTaskHandler(uc *taskUC.UseCase, validator *transport.Validator, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	if validator == nil {
		validator = transport.NewValidator()
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		validator:   validator,
	}
}

// @Summary Liveness probe
// @Tags tasks
// @Router /api/tasks/health [get]
func (h *TaskHandler) Health(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBodyString(HealthMessage)
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTaskRequest
	if err := transport.DecodeJSON(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	if err := h.validator.ValidateCreate(req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, req.ToTask())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.NewTaskResponse(created))
}

// @Summary List tasks
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	h.respondTasks(ctx, h.uc.ListTasks)
}

// @Summary Get task
// @Tags tasks
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, err := parseTaskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, found, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !found {
		h.respondError(ctx, domain.TaskNotFound(id))
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskResponse(task))
}

// @Summary Update task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, err := parseTaskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.UpdateTaskRequest
	if err := transport.DecodeJSON(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	if err := h.validator.ValidateUpdate(req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, req.ToPatch())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskResponse(updated))
}

// @Summary Delete task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, err := parseTaskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Mark task completed
// @Tags tasks
// @Router /api/tasks/{id}/complete [patch]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	id, err := parseTaskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.MarkCompleted(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskResponse(task))
}

// @Summary Task change history
// @Tags tasks
// @Router /api/tasks/{id}/history [get]
func (h *TaskHandler) History(ctx *fasthttp.RequestCtx) {
	id, err := parseTaskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.History(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewJournalResponse(entries))
}

// @Summary Tasks by status
// @Tags tasks
// @Router /api/tasks/status/{status} [get]
func (h *TaskHandler) ByStatus(ctx *fasthttp.RequestCtx) {
	status, err := domain.ParseTaskStatus(pathParam(ctx, "status"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.ByStatus(stdCtx, status)
	})
}

// @Summary Tasks by status and priority
// @Tags tasks
// @Router /api/tasks/status/{status}/priority/{priority} [get]
func (h *TaskHandler) ByStatusAndPriority(ctx *fasthttp.RequestCtx) {
	status, err := domain.ParseTaskStatus(pathParam(ctx, "status"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	priority, err := domain.ParseTaskPriority(pathParam(ctx, "priority"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.ByStatusAndPriority(stdCtx, status, priority)
	})
}

// @Summary Tasks by priority
// @Tags tasks
// @Router /api/tasks/priority/{priority} [get]
func (h *TaskHandler) ByPriority(ctx *fasthttp.RequestCtx) {
	priority, err := domain.ParseTaskPriority(pathParam(ctx, "priority"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.ByPriority(stdCtx, priority)
	})
}

// @Summary Tasks by assignee
// @Tags tasks
// @Router /api/tasks/assigned/{assignedTo} [get]
func (h *TaskHandler) ByAssignedTo(ctx *fasthttp.RequestCtx) {
	assignedTo := pathParam(ctx, "assignedTo")
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.ByAssignedTo(stdCtx, assignedTo)
	})
}

// @Summary Filter tasks by optional criteria
// @Tags tasks
// @Router /api/tasks/filter [get]
func (h *TaskHandler) Filter(ctx *fasthttp.RequestCtx) {
	var filter repository.TaskFilter
	args := ctx.QueryArgs()

	if raw := strings.TrimSpace(string(args.Peek("status"))); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(string(args.Peek("priority"))); raw != "" {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		filter.Priority = &priority
	}
	if args.Has("assignedTo") {
		assignedTo := string(args.Peek("assignedTo"))
		filter.AssignedTo = &assignedTo
	}

	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.FindByCriteria(stdCtx, filter)
	})
}

// @Summary Tasks created after a timestamp
// @Tags tasks
// @Router /api/tasks/created-after [get]
func (h *TaskHandler) CreatedAfter(ctx *fasthttp.RequestCtx) {
	after, ok := h.queryTime(ctx, "date")
	if !ok {
		return
	}
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.CreatedAfter(stdCtx, after)
	})
}

// @Summary Tasks due before a timestamp
// @Tags tasks
// @Router /api/tasks/due-before [get]
func (h *TaskHandler) DueBefore(ctx *fasthttp.RequestCtx) {
	before, ok := h.queryTime(ctx, "date")
	if !ok {
		return
	}
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.DueBefore(stdCtx, before)
	})
}

// @Summary Overdue tasks
// @Tags tasks
// @Router /api/tasks/overdue [get]
func (h *TaskHandler) Overdue(ctx *fasthttp.RequestCtx) {
	h.respondTasks(ctx, h.uc.Overdue)
}

// @Summary High priority tasks not yet completed
// @Tags tasks
// @Router /api/tasks/high-priority-pending [get]
func (h *TaskHandler) HighPriorityPending(ctx *fasthttp.RequestCtx) {
	h.respondTasks(ctx, h.uc.HighPriorityPending)
}

// @Summary Search titles
// @Tags tasks
// @Router /api/tasks/search/title [get]
func (h *TaskHandler) SearchByTitle(ctx *fasthttp.RequestCtx) {
	keyword := string(ctx.QueryArgs().Peek("keyword"))
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.SearchByTitle(stdCtx, keyword)
	})
}

// @Summary Search descriptions
// @Tags tasks
// @Router /api/tasks/search/description [get]
func (h *TaskHandler) SearchByDescription(ctx *fasthttp.RequestCtx) {
	keyword := string(ctx.QueryArgs().Peek("keyword"))
	h.respondTasks(ctx, func(stdCtx context.Context) ([]domain.Task, error) {
		return h.uc.SearchByDescription(stdCtx, keyword)
	})
}

// @Summary Task statistics
// @Tags tasks
// @Router /api/tasks/statistics [get]
func (h *TaskHandler) Statistics(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Statistics(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, stats)
}

func (h *TaskHandler) respondTasks(ctx *fasthttp.RequestCtx, query func(context.Context) ([]domain.Task, error)) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := query(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskListResponse(tasks))
}

func (h *TaskHandler) queryTime(ctx *fasthttp.RequestCtx, name string) (time.Time, bool) {
	raw := string(ctx.QueryArgs().Peek(name))
	if raw == "" {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "missing query parameter "+name))
		return time.Time{}, false
	}
	parsed, err := transport.ParseDateTime(raw)
	if err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInvalid, "invalid query parameter "+name, err))
		return time.Time{}, false
	}
	return parsed, true
}
