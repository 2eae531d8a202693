package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Acceso a proyectos externos.
	ErrGrantNotFound   = errors.New("la empresa no tiene acceso registrado a este proyecto")
	ErrGrantInactive   = errors.New("el acceso de la empresa al proyecto no está activo")
	ErrNoMembership    = errors.New("el usuario no tiene membresía en el proyecto")
	ErrNoRegistrar     = errors.New("el proyecto no tiene integración de registro externo")
	ErrExternalAuth    = errors.New("el sistema externo rechazó las credenciales")
	ErrCredentialUnset = errors.New("credencial no disponible")

	// Suscripciones y pagos.
	ErrPlanInactive        = errors.New("el plan de suscripción no está activo")
	ErrPlanInUse           = errors.New("el plan tiene suscripciones activas o en prueba")
	ErrNoSubscription      = errors.New("la empresa no tiene suscripción")
	ErrPaymentNotCompleted = errors.New("el pago no ha sido completado")
	ErrInvalidSignature    = errors.New("firma de webhook inválida")
	ErrPaymentProvider     = errors.New("error del proveedor de pagos")

	// Integridad referencial traducida desde la base de datos.
	ErrReferenceViolation = errors.New("el recurso referenciado no existe o está en uso")
)
