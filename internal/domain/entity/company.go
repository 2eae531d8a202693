package entity

import "time"

// Estados de Company.
const (
	CompanyStatusPending   = "pending"
	CompanyStatusApproved  = "approved"
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
	CompanyStatusRejected  = "rejected"
)

// Estados de suscripción reflejados en Company (los consulta el gate en cada request).
const (
	SubscriptionStatusNone     = "none"
	SubscriptionStatusApproved = "approved"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID                 string
	Name               string
	TaxID              string
	Email              string
	Phone              string
	Status             string // ver CompanyStatus*
	SubscriptionStatus string // ver SubscriptionStatus*
	BillingCustomerRef string // referencia del cliente en el proveedor de pagos (cus_...)
	ApprovedBy         string
	ApprovedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOperational indica si la empresa puede usar las funcionalidades de tenant.
func (c *Company) IsOperational() bool {
	return c != nil && c.Status == CompanyStatusActive && c.SubscriptionStatus == SubscriptionStatusActive
}
