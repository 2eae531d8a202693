package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
)

// ProjectHandler catálogo de proyectos (operador).
type ProjectHandler struct {
	responder
	uc *usecase.ProjectUseCase
}

// NewProjectHandler construye el handler.
func NewProjectHandler(uc *usecase.ProjectUseCase, debug bool) *ProjectHandler {
	return &ProjectHandler{responder: responder{debug: debug}, uc: uc}
}

// Create godoc
// @Summary      Crear proyecto
// @Tags         admin-projects
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProjectRequest  true  "Proyecto"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.ProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar proyecto
// @Tags         admin-projects
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del proyecto"
// @Param        body  body  dto.ProjectRequest  true  "Proyecto"
// @Success      200   {object}  dto.ProjectResponse
// @Router       /api/admin/projects/{id} [put]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.ProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/admin/projects/:id
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// List GET /api/admin/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
