package identity

// Role determines which dashboard variant and navigation set a user sees.
// It is assigned server-side at registration and immutable from this side.
type Role string

const (
	RoleAgent     Role = "AGENT"
	RoleAffiliate Role = "AFFILIATE"
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether the role is part of the fixed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAgent, RoleAffiliate, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns the dashboard root the role is redirected to after
// authentication. Roles without a partner dashboard land on the marketing root.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAgent:
		return "/agent/dashboard"
	case RoleAffiliate:
		return "/affiliate/dashboard"
	default:
		return "/"
	}
}

// User mirrors the platform profile payload. The portal never owns its
// lifecycle; it is created and mutated upstream.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TelegramID string `json:"telegram_id"`
	Role       Role   `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// FullName joins first and last name for display purposes.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
