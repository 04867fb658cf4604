package kernel

// Roles recognised by the account module.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthContext is the identity extracted from a verified token and carried
// through the request.
type AuthContext struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenKind string `json:"token_kind"`
}

// IsValid reports whether the context names a subject.
func (ac *AuthContext) IsValid() bool {
	return ac != nil && ac.Email != ""
}

// IsAdmin reports whether the subject holds the admin role.
func (ac *AuthContext) IsAdmin() bool {
	return ac != nil && ac.Role == RoleAdmin
}

type ContextKey string

const (
	// AuthContextKey stores the *AuthContext in fiber locals and context.Context
	AuthContextKey ContextKey = "auth"

	// RequestIDKey stores the request id
	RequestIDKey ContextKey = "request_id"
)
