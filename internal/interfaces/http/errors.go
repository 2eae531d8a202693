package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
)

// errorStatus traduce errores de dominio a (status, code). Se evalúa en orden.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidSignature, fiber.StatusBadRequest, "INVALID_SIGNATURE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrGrantInactive, fiber.StatusForbidden, "ACCESS_INACTIVE"},
	{domain.ErrNoMembership, fiber.StatusForbidden, "NO_MEMBERSHIP"},
	{domain.ErrGrantNotFound, fiber.StatusNotFound, "ACCESS_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNoSubscription, fiber.StatusNotFound, "NO_SUBSCRIPTION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrPaymentNotCompleted, fiber.StatusPaymentRequired, "PAYMENT_NOT_COMPLETED"},
	{domain.ErrPlanInUse, fiber.StatusUnprocessableEntity, "PLAN_IN_USE"},
	{domain.ErrPlanInactive, fiber.StatusUnprocessableEntity, "PLAN_INACTIVE"},
	{domain.ErrReferenceViolation, fiber.StatusUnprocessableEntity, "REFERENCE_VIOLATION"},
	{domain.ErrNoRegistrar, fiber.StatusUnprocessableEntity, "NO_INTEGRATION"},
	{domain.ErrCredentialUnset, fiber.StatusUnprocessableEntity, "CREDENTIAL_UNAVAILABLE"},
	{domain.ErrExternalAuth, fiber.StatusBadGateway, "EXTERNAL_AUTH_FAILED"},
}

// responder escribe respuestas de error; debug expone el detalle de los errores internos.
type responder struct {
	debug bool
}

func (r responder) fail(c *fiber.Ctx, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}

	code := "INTERNAL"
	if errors.Is(err, domain.ErrPaymentProvider) {
		code = "PAYMENT_PROVIDER_ERROR"
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("Error interno en request")
	msg := "error interno"
	if r.debug {
		msg = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func (r responder) badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func (r responder) invalid(c *fiber.Ctx, errs dto.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos",
		Errors:  errs,
	})
}

func (r responder) missing(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: what + " es requerido"})
}
