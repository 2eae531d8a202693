package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/auth"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
)

// AuthHandler maneja signup, login y perfil.
type AuthHandler struct {
	responder
	uc        *auth.AuthUseCase
	companies *usecase.CompanyUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, companies *usecase.CompanyUseCase, debug bool) *AuthHandler {
	return &AuthHandler{responder: responder{debug: debug}, uc: uc, companies: companies}
}

// Signup godoc
// @Summary      Registrar empresa y usuario administrador
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Empresa y administrador"
// @Success      201   {object}  dto.SignupResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.companies.Signup(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado y su empresa
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MeResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.Context(), GetActor(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
