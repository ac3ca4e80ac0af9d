package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/tasknest/backend/api/handler"
	"github.com/tasknest/backend/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New wires the route table. Identity is resolved once per request by the
// session middleware; the /task routes additionally require it.
func New(handlers Handlers, sessions *middleware.SessionResolver) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/data", sessions.Optional(handlers.Auth.State))
	r.POST("/login", handlers.Auth.Login)
	r.DELETE("/logout", sessions.Optional(handlers.Auth.Logout))

	r.POST("/task", sessions.Required(handlers.Task.Create))
	r.PUT("/task", sessions.Required(handlers.Task.Update))
	r.DELETE("/task", sessions.Required(handlers.Task.Delete))

	return r
}
