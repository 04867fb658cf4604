package user

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/google/uuid"
)

// User is the identity record. Exactly one exists per e-mail address.
type User struct {
	ID    string `bson:"_id" db:"id"`
	Email string `bson:"email" db:"email"`
	Name  string `bson:"name" db:"name"`
	Image string `bson:"image" db:"image"`

	// PasswordHash and Salt are empty unless Provider is email.
	PasswordHash string `bson:"password_hash" db:"password_hash"`
	Salt         string `bson:"salt" db:"salt"`

	// Provider is fixed once the identity is verified.
	Provider      iam.Provider `bson:"provider" db:"provider"`
	EmailVerified bool         `bson:"email_verified" db:"email_verified"`

	// VerifyCodeHash is set only while an OTP is outstanding.
	VerifyCodeHash *string `bson:"verify_code_hash" db:"verify_code_hash"`

	Role              string    `bson:"role" db:"role"`
	ExternalBillingID string    `bson:"external_billing_id" db:"external_billing_id"`
	CreatedAt         time.Time `bson:"created_at" db:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" db:"updated_at"`
}

// NewUser builds a record stamped at now. Email identities start provisional;
// social identities start verified.
func NewUser(email, name, image string, provider iam.Provider, now time.Time) *User {
	return &User{
		ID:            uuid.NewString(),
		Email:         iam.NormalizeEmail(email),
		Name:          name,
		Image:         image,
		Provider:      provider,
		EmailVerified: !provider.UsesPassword(),
		Role:          kernel.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsProvisional reports whether the record is awaiting OTP confirmation.
func (u *User) IsProvisional() bool {
	return !u.EmailVerified
}

func (u *User) HasOutstandingCode() bool {
	return u.VerifyCodeHash != nil && *u.VerifyCodeHash != ""
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	c := *u
	if u.VerifyCodeHash != nil {
		h := *u.VerifyCodeHash
		c.VerifyCodeHash = &h
	}
	return &c
}

// Profile is the outward view of a User. Secrets, provider and timestamps
// never leave the service.
type Profile struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Image             string `json:"image"`
	Role              string `json:"role"`
	EmailVerified     bool   `json:"email_verified"`
	ExternalBillingID string `json:"billing_customer_id,omitempty"`
}

func (u *User) ToProfile() Profile {
	return Profile{
		Email:             u.Email,
		Name:              u.Name,
		Image:             u.Image,
		Role:              u.Role,
		EmailVerified:     u.EmailVerified,
		ExternalBillingID: u.ExternalBillingID,
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name              *string
	Image             *string
	Role              *string
	PasswordHash      *string
	Salt              *string
	EmailVerified     *bool
	VerifyCodeHash    *string
	ClearVerifyCode   bool
	ExternalBillingID *string
	UpdatedAt         time.Time
}

// Apply mutates u in place. Adapters without native partial updates use it.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Image != nil {
		u.Image = *p.Image
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Salt != nil {
		u.Salt = *p.Salt
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.ClearVerifyCode {
		u.VerifyCodeHash = nil
	} else if p.VerifyCodeHash != nil {
		h := *p.VerifyCodeHash
		u.VerifyCodeHash = &h
	}
	if p.ExternalBillingID != nil {
		u.ExternalBillingID = *p.ExternalBillingID
	}
	if !p.UpdatedAt.IsZero() {
		u.UpdatedAt = p.UpdatedAt
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound   = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeDuplicateEmail = ErrRegistry.Register("DUPLICATE_EMAIL", errx.TypeConflict, http.StatusConflict, "A user with this email already exists")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrDuplicateEmail() *errx.Error {
	return ErrRegistry.New(CodeDuplicateEmail)
}
