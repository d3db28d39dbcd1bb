package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/internal/middleware"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

type Options struct {
	// Auth guards every task route except the liveness probe. Nil disables auth.
	Auth        middleware.Middleware
	EnablePprof bool
}

func New(handlers Handlers, opts Options) *router.Router {
	r := router.New()

	protect := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		if opts.Auth == nil {
			return h
		}
		return opts.Auth(h)
	}
	t := handlers.Task

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}
	r.GET("/api/tasks/health", t.Health)

	r.POST("/api/tasks", protect(t.CreateTask))
	r.GET("/api/tasks", protect(t.ListTasks))

	r.GET("/api/tasks/statistics", protect(t.Statistics))
	r.GET("/api/tasks/overdue", protect(t.Overdue))
	r.GET("/api/tasks/high-priority-pending", protect(t.HighPriorityPending))
	r.GET("/api/tasks/filter", protect(t.Filter))
	r.GET("/api/tasks/created-after", protect(t.CreatedAfter))
	r.GET("/api/tasks/due-before", protect(t.DueBefore))
	r.GET("/api/tasks/search/title", protect(t.SearchByTitle))
	r.GET("/api/tasks/search/description", protect(t.SearchByDescription))
	r.GET("/api/tasks/status/{status}", protect(t.ByStatus))
	r.GET("/api/tasks/status/{status}/priority/{priority}", protect(t.ByStatusAndPriority))
	r.GET("/api/tasks/priority/{priority}", protect(t.ByPriority))
	r.GET("/api/tasks/assigned/{assignedTo}", protect(t.ByAssignedTo))

	r.GET("/api/tasks/{id}", protect(t.GetTask))
	r.PUT("/api/tasks/{id}", protect(t.UpdateTask))
	r.DELETE("/api/tasks/{id}", protect(t.DeleteTask))
	r.PATCH("/api/tasks/{id}/complete", protect(t.CompleteTask))
	r.GET("/api/tasks/{id}/history", protect(t.History))

	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	return r
}
