package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
)

// CompanyHandler revisión de empresas por el operador.
type CompanyHandler struct {
	responder
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase, debug bool) *CompanyHandler {
	return &CompanyHandler{responder: responder{debug: debug}, uc: uc}
}

// List godoc
// @Summary      Listar empresas
// @Tags         admin-companies
// @Produce      json
// @Param        status  query  string  false  "pending, approved, active, suspended, rejected"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.CompanyListResponse
// @Router       /api/admin/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	page.Normalize()
	out, err := h.uc.List(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener empresa por ID
// @Tags         admin-companies
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return h.missing(c, "id")
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar empresa
// @Tags         admin-companies
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/companies/{id}/approve [post]
func (h *CompanyHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar empresa
// @Tags         admin-companies
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID de la empresa"
// @Param        body  body  dto.RejectCompanyRequest  false  "Motivo"
// @Success      200   {object}  dto.CompanyResponse
// @Router       /api/admin/companies/{id}/reject [post]
func (h *CompanyHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectCompanyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return h.badBody(c)
		}
	}
	out, err := h.uc.Reject(c.Context(), GetActor(c), c.Params("id"), in.Reason)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
