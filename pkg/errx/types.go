package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents store or collaborator failures the caller cannot fix
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents malformed input rejected at the boundary
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents missing, invalid or expired credentials
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeForbidden represents authenticated callers acting outside their rights
	TypeForbidden Type = "FORBIDDEN"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents uniqueness and state conflicts
	TypeConflict Type = "CONFLICT"

	// TypeBusiness represents business rule violations
	TypeBusiness Type = "BUSINESS"

	// TypeExternal represents errors from external services (billing, mail)
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// HTTPStatus maps an error type to its default HTTP status code
func (t Type) HTTPStatus() int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthorization:
		return 401
	case TypeForbidden:
		return 403
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeBusiness:
		return 422
	case TypeExternal:
		return 502
	default:
		return 500
	}
}
