// Package router wires HTTP routes to their handlers. Public endpoints,
// auth endpoints and the JWT-protected entity groups are registered by
// separate functions so main can compose them.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/handler"
	"github.com/ritualplanner/ritualplanner/internal/middleware"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// RegisterPublic registers the endpoints that need no token: the health
// probe and the contact form.
func RegisterPublic(e *echo.Echo, contact *handler.ContactHandler) {
	e.GET("/healthz", handler.Health)
	e.POST("/api/contact", contact.Submit)
}

// RegisterAuth registers the authentication endpoints under /api/auth.
// The rate limiter guards the whole group; logout, me, profile and account
// deletion additionally require a valid token.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, limiter echo.MiddlewareFunc, jwtSecret string, users *repository.UserRepo) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/verify-otp", h.VerifyOTP)
	g.POST("/reset-password", h.ResetPassword)

	auth := middleware.JWTAuth(jwtSecret, users)
	g.POST("/logout", h.Logout, auth)
	g.GET("/me", h.Me, auth)
	g.PUT("/me", h.UpdateProfile, auth)
	g.DELETE("/account", h.DeleteAccount, auth)
}

// Handlers bundles the entity handlers RegisterAPI mounts.
type Handlers struct {
	Clients   *handler.ClientHandler
	CoWorkers *handler.CoWorkerHandler
	Notes     *handler.NoteHandler
	Templates *handler.TemplateHandler
	Bills     *handler.BillHandler
	Tasks     *handler.TaskHandler
	Payments  *handler.PaymentHandler
}

// RegisterAPI registers the owned-entity CRUD endpoints under /api. Every
// route requires a valid JWT; ownership scoping happens in the handlers.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, users *repository.UserRepo) {
	g := e.Group("/api", middleware.JWTAuth(jwtSecret, users))

	g.POST("/clients/create", h.Clients.Create)
	g.GET("/clients", h.Clients.List)
	g.GET("/clients/:id", h.Clients.Get)
	g.PUT("/clients/modify/update/:id", h.Clients.Update)
	g.DELETE("/clients/modify/delete/:id", h.Clients.Delete)

	g.POST("/coworkers/create", h.CoWorkers.Create)
	g.GET("/coworkers", h.CoWorkers.List)
	g.GET("/coworkers/:id", h.CoWorkers.Get)
	g.PUT("/coworkers/modify/update/:id", h.CoWorkers.Update)
	g.DELETE("/coworkers/modify/delete/:id", h.CoWorkers.Delete)

	g.POST("/notes/create", h.Notes.Create)
	g.GET("/notes", h.Notes.List)
	g.GET("/notes/:id", h.Notes.Get)
	g.PUT("/notes/modify/update/:id", h.Notes.Update)
	g.DELETE("/notes/modify/delete/:id", h.Notes.Delete)

	g.POST("/templates/create", h.Templates.Create)
	g.GET("/templates", h.Templates.List)
	g.GET("/templates/:id", h.Templates.Get)
	g.PUT("/templates/modify/update/:id", h.Templates.Update)
	g.DELETE("/templates/modify/delete/:id", h.Templates.Delete)

	g.POST("/bills/create", h.Bills.Create)
	g.GET("/bills", h.Bills.List)
	g.GET("/bills/:id", h.Bills.Get)
	g.PUT("/bills/modify/update/:id", h.Bills.Update)
	g.DELETE("/bills/modify/delete/:id", h.Bills.Delete)

	g.POST("/tasks/create", h.Tasks.Create)
	g.GET("/tasks", h.Tasks.List)
	g.GET("/tasks/:id", h.Tasks.Get)
	g.PUT("/tasks/modify/update/:id", h.Tasks.Update)
	g.DELETE("/tasks/modify/delete/:id", h.Tasks.Delete)

	// Payments have no direct create endpoint; they are written through the
	// task aggregate.
	g.GET("/payments", h.Payments.List)
	g.GET("/payments/:id", h.Payments.Get)
	g.PUT("/payments/modify/update/:id", h.Payments.Update)
	g.DELETE("/payments/modify/delete/:id", h.Payments.Delete)
}
