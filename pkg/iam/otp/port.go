package otp

import "context"

// NotificationService delivers a code to a contact out of band.
type NotificationService interface {
	SendOTP(ctx context.Context, contact string, code string) error
}
