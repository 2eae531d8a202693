package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica valores por defecto y topes.
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse error 400 con mensajes por campo.
type ValidationErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// PaymentRequiredResponse rechazo del gate de suscripción (HTTP 402).
type PaymentRequiredResponse struct {
	Code               string `json:"code"`
	Message            string `json:"message"`
	SubscriptionStatus string `json:"subscription_status"`
}

// FieldErrors acumula errores de validación por campo.
type FieldErrors map[string][]string

// Add registra un mensaje para el campo.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Empty informa si no hay errores.
func (f FieldErrors) Empty() bool { return len(f) == 0 }
