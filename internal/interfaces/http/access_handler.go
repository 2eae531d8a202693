package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/xlsx"
)

// AccessHandler accesos empresa↔proyecto, membresías y SSO.
type AccessHandler struct {
	responder
	uc       *access.AccessUseCase
	projects *usecase.ProjectUseCase
}

// NewAccessHandler construye el handler.
func NewAccessHandler(uc *access.AccessUseCase, projects *usecase.ProjectUseCase, debug bool) *AccessHandler {
	return &AccessHandler{responder: responder{debug: debug}, uc: uc, projects: projects}
}

// Grant godoc
// @Summary      Otorgar acceso de una empresa a un proyecto
// @Description  Materializa membresías de los usuarios activos y, si el acceso queda activo,
// @Description  registra a los pendientes en el sistema externo (registration_result).
// @Tags         admin-access
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                  true  "ID de la empresa"
// @Param        projectId  path  string                  true  "ID del proyecto"
// @Param        body       body  dto.GrantAccessRequest  false "Estado y credenciales"
// @Success      201  {object}  dto.AccessGrantResponse
// @Router       /api/admin/companies/{companyId}/projects/{projectId}/access [post]
func (h *AccessHandler) Grant(c *fiber.Ctx) error {
	var in dto.GrantAccessRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return h.badBody(c)
		}
	}
	out, err := h.uc.GrantAccess(c.Context(), GetActor(c), c.Params("companyId"), c.Params("projectId"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Revoke godoc
// @Summary      Revocar acceso (las membresías no se tocan)
// @Tags         admin-access
// @Produce      json
// @Success      200  {object}  dto.AccessGrantResponse
// @Router       /api/admin/companies/{companyId}/projects/{projectId}/access/revoke [post]
func (h *AccessHandler) Revoke(c *fiber.Ctx) error {
	out, err := h.uc.RevokeAccess(c.Context(), GetActor(c), c.Params("companyId"), c.Params("projectId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del acceso
// @Tags         admin-access
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateAccessStatusRequest  true  "pending | active | suspended | revoked"
// @Success      200  {object}  dto.AccessGrantResponse
// @Router       /api/admin/companies/{companyId}/projects/{projectId}/access/status [patch]
func (h *AccessHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateAccessStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if in.Status == "" {
		return h.missing(c, "status")
	}
	out, err := h.uc.UpdateAccessStatus(c.Context(), GetActor(c), c.Params("companyId"), c.Params("projectId"), in.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Reregister godoc
// @Summary      Reintentar el registro externo de los usuarios pendientes
// @Tags         admin-access
// @Produce      json
// @Success      200  {object}  dto.RegistrationResult
// @Router       /api/admin/companies/{companyId}/projects/{projectId}/access/reregister [post]
func (h *AccessHandler) Reregister(c *fiber.Ctx) error {
	out, err := h.uc.Reregister(c.Context(), GetActor(c), c.Params("companyId"), c.Params("projectId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Memberships GET .../access/memberships
func (h *AccessHandler) Memberships(c *fiber.Ctx) error {
	out, err := h.uc.ListProjectMemberships(c.Context(), c.Params("companyId"), c.Params("projectId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// ExportMemberships descarga las membresías en XLSX.
// GET .../access/memberships/export
func (h *AccessHandler) ExportMemberships(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	project, err := h.projects.GetByID(c.Context(), projectID)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.uc.ListProjectMemberships(c.Context(), c.Params("companyId"), projectID)
	if err != nil {
		return h.fail(c, err)
	}
	book, err := xlsx.MembershipsWorkbook(project.Name, rows)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="membresias-%s.xlsx"`, project.Slug))
	return c.Send(book)
}

// CompanyAccess GET /api/projects/access: accesos de la empresa del token.
func (h *AccessHandler) CompanyAccess(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el usuario no pertenece a una empresa"})
	}
	out, err := h.uc.ListCompanyAccess(c.Context(), companyID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// OpenSession godoc
// @Summary      Abrir sesión SSO en el sistema externo
// @Tags         projects
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.SSOSessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/sso [post]
func (h *AccessHandler) OpenSession(c *fiber.Ctx) error {
	out, err := h.uc.OpenSession(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
