package user

import "context"

// Repository is the credential store. Emails are passed normalised.
type Repository interface {
	// FindByEmail fails with USER_NOT_FOUND.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create fails with USER_DUPLICATE_EMAIL when the unique index rejects it.
	Create(ctx context.Context, u *User) error
	// DeleteByEmail is a no-op for unknown emails.
	DeleteByEmail(ctx context.Context, email string) error
	// Update applies patch last-writer-wins and returns the stored record.
	Update(ctx context.Context, email string, patch Patch) (*User, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
