package otp

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Codec hashes codes for storage and checks candidates against them.
type Codec interface {
	Hash(code string) (string, error)
	Verify(code, hash string) (bool, error)
}

// BcryptCodec stores codes as bcrypt hashes.
type BcryptCodec struct {
	cost int
}

func NewBcryptCodec(cost int) *BcryptCodec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCodec{cost: cost}
}

func (c *BcryptCodec) Hash(code string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), c.cost)
	if err != nil {
		return "", ErrHashingFailed().WithCause(err)
	}
	return string(h), nil
}

func (c *BcryptCodec) Verify(code, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrHashingFailed().WithCause(err)
	}
}
