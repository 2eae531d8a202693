package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
)

// UserHandler usuarios de la empresa del token.
type UserHandler struct {
	responder
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, debug bool) *UserHandler {
	return &UserHandler{responder: responder{debug: debug}, uc: uc}
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar usuarios de la empresa
// @Tags         users
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.UserListResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.Normalize()
	out, err := h.uc.List(c.Context(), GetActor(c), page.Limit, page.Offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Activar o desactivar usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del usuario"
// @Param        body  body  dto.UpdateUserStatusRequest  true  "active | inactive"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/status [patch]
func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateUserStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if in.Status == "" {
		return h.missing(c, "status")
	}
	out, err := h.uc.UpdateStatus(c.Context(), GetActor(c), c.Params("id"), in.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
