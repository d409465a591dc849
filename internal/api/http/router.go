package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leaguedesk/roster-service/internal/api/http/handlers"
	"github.com/leaguedesk/roster-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Staff          *handlers.StaffHandler
	Tags           *handlers.TagsHandler
	Approvals      *handlers.ApprovalsHandler
	AuthMiddleware *auth.AuthMiddleware
	Authorizer     *auth.Authorizer
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Post("/session", cfg.Session.Open)

	authn := cfg.AuthMiddleware.Handle
	can := cfg.Authorizer.RequirePermission

	app.Get("/staff", authn, can(auth.ObjectStaff, auth.ActionRead), cfg.Staff.List)
	app.Post("/staff/tags/bulk", authn, can(auth.ObjectStaffTags, auth.ActionBulk), cfg.Staff.BulkTags)
	app.Get("/staff/:id", authn, can(auth.ObjectStaff, auth.ActionRead), cfg.Staff.Get)
	app.Put("/staff/:id/tags", authn, can(auth.ObjectStaffTags, auth.ActionPropose), cfg.Staff.ProposeTags)

	app.Get("/tags", authn, can(auth.ObjectTags, auth.ActionRead), cfg.Tags.List)
	app.Post("/tags", authn, can(auth.ObjectTags, auth.ActionManage), cfg.Tags.Create)
	app.Put("/tags/:name", authn, can(auth.ObjectTags, auth.ActionManage), cfg.Tags.Rename)
	app.Delete("/tags/:name", authn, can(auth.ObjectTags, auth.ActionManage), cfg.Tags.Delete)

	app.Get("/approvals/pending", authn, can(auth.ObjectApprovals, auth.ActionReadPending), cfg.Approvals.ListPending)
	app.Get("/approvals/sent", authn, can(auth.ObjectApprovals, auth.ActionReadSent), cfg.Approvals.ListSent)
	app.Post("/approvals/:id/approve", authn, can(auth.ObjectApprovals, auth.ActionResolve), cfg.Approvals.Approve)
	app.Post("/approvals/:id/reject", authn, can(auth.ObjectApprovals, auth.ActionResolve), cfg.Approvals.Reject)
}
