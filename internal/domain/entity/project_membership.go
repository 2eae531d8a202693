package entity

import "time"

// Estados de ProjectMembership.
const (
	MembershipStatusActive  = "active"
	MembershipStatusRevoked = "revoked"
)

// ProjectMembership vínculo de un usuario con el acceso de su empresa a un proyecto.
// Único por (GrantID, UserID).
type ProjectMembership struct {
	ID                     string
	GrantID                string
	UserID                 string
	ExternalUserID         *string
	ExternalUsername       string
	ExternalRole           string
	ExternalSessionToken   string
	ExternalTokenExpiresAt *time.Time
	Status                 string
	RevokedAt              *time.Time
	RevokedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasValidSession informa si el token cacheado sigue vigente en now.
func (m *ProjectMembership) HasValidSession(now time.Time) bool {
	if m == nil || m.ExternalSessionToken == "" || m.ExternalTokenExpiresAt == nil {
		return false
	}
	return now.Before(*m.ExternalTokenExpiresAt)
}
