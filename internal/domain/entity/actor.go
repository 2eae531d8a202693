package entity

// Actor identidad explícita de quien ejecuta una operación (sale del JWT, nunca de estado global).
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

// IsSuperAdmin informa si el actor es operador de la plataforma.
func (a Actor) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }
