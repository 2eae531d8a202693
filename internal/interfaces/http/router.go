package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/auth"
	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	subdomain "github.com/jhoicas/crm-portal-api/internal/domain/subscription"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	CompanyUC      *usecase.CompanyUseCase
	UserUC         *usecase.UserUseCase
	ProjectUC      *usecase.ProjectUseCase
	AccessUC       *access.AccessUseCase
	SubscriptionUC *subscription.UseCase
	Companies      companyLookup
	Gate           *subdomain.Gate
	GateObserver   GateObserver
	JWTSecret      string
	Debug          bool
}

// Router registra las rutas de la API. Las rutas públicas se registran antes del
// grupo protegido para que el middleware de auth no las alcance.
func Router(app *fiber.App, deps RouterDeps) {
	gate := deps.Gate
	if gate == nil {
		gate = subdomain.NewGate()
	}
	authHandler := NewAuthHandler(deps.AuthUC, deps.CompanyUC, deps.Debug)
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Debug)
	userHandler := NewUserHandler(deps.UserUC, deps.Debug)
	projectHandler := NewProjectHandler(deps.ProjectUC, deps.Debug)
	accessHandler := NewAccessHandler(deps.AccessUC, deps.ProjectUC, deps.Debug)
	subHandler := NewSubscriptionHandler(deps.SubscriptionUC, deps.Debug)

	api := app.Group("/api")

	// Públicas
	api.Post("/auth/signup", authHandler.Signup)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/stripe/webhook", subHandler.Webhook)
	api.Get("/subscription/checkout/success", subHandler.CheckoutSuccess)

	// Rutas protegidas (Bearer Token + gate de suscripción)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret), SubscriptionGate(gate, deps.Companies, deps.GateObserver))

	protected.Get("/me", authHandler.Me)

	protected.Get("/subscription-plans", subHandler.ListPlans)
	protected.Get("/subscription", subHandler.Current)
	protected.Post("/subscription/checkout", RequireRole(entity.RoleAdmin), subHandler.Checkout)
	protected.Post("/subscription/cancel", RequireRole(entity.RoleAdmin), subHandler.Cancel)
	protected.Get("/subscription/receipt", subHandler.Receipt)

	users := protected.Group("/users", RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Patch("/:id/status", userHandler.UpdateStatus)

	projects := protected.Group("/projects")
	projects.Get("/access", accessHandler.CompanyAccess)
	projects.Post("/:id/sso", accessHandler.OpenSession)

	// Operador de la plataforma
	admin := protected.Group("/admin", RequireRole(entity.RoleSuperAdmin))

	companies := admin.Group("/companies")
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Post("/:id/approve", companyHandler.Approve)
	companies.Post("/:id/reject", companyHandler.Reject)

	grant := companies.Group("/:companyId/projects/:projectId/access")
	grant.Post("/", accessHandler.Grant)
	grant.Post("/revoke", accessHandler.Revoke)
	grant.Patch("/status", accessHandler.UpdateStatus)
	grant.Post("/reregister", accessHandler.Reregister)
	grant.Get("/memberships", accessHandler.Memberships)
	grant.Get("/memberships/export", accessHandler.ExportMemberships)

	adminProjects := admin.Group("/projects")
	adminProjects.Get("/", projectHandler.List)
	adminProjects.Post("/", projectHandler.Create)
	adminProjects.Get("/:id", projectHandler.GetByID)
	adminProjects.Put("/:id", projectHandler.Update)

	plans := admin.Group("/subscription-plans")
	plans.Get("/", subHandler.ListPlans)
	plans.Post("/", subHandler.CreatePlan)
	plans.Get("/:id", subHandler.GetPlan)
	plans.Put("/:id", subHandler.UpdatePlan)
	plans.Delete("/:id", subHandler.DeletePlan)
}
