package authinfra

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32
)

// Argon2PasswordService implements auth.PasswordService with argon2id. The
// salt is stored next to the hash; the hash string records its own cost
// parameters so they can be raised without invalidating existing passwords.
type Argon2PasswordService struct {
	time    uint32
	memory  uint32
	threads uint8
}

func NewArgon2PasswordService(time, memory uint32, threads uint8) *Argon2PasswordService {
	if time == 0 {
		time = 1
	}
	if memory == 0 {
		memory = 64 * 1024
	}
	if threads == 0 {
		threads = 4
	}
	return &Argon2PasswordService{time: time, memory: memory, threads: threads}
}

var _ auth.PasswordService = (*Argon2PasswordService)(nil)

func (s *Argon2PasswordService) Hash(plain string) (string, string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", auth.ErrHashingFailed().WithCause(err)
	}

	key := argon2.IDKey([]byte(plain), salt, s.time, s.memory, s.threads, keyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version, s.memory, s.time, s.threads,
		base64.RawStdEncoding.EncodeToString(key))

	return encoded, base64.RawStdEncoding.EncodeToString(salt), nil
}

func (s *Argon2PasswordService) Verify(plain, hash, salt string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[1] != "argon2id" {
		return false, auth.ErrHashingFailed().WithDetail("reason", "invalid hash format")
	}

	var (
		memory, time uint32
		threads      uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, auth.ErrHashingFailed().WithCause(err)
	}

	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return false, auth.ErrHashingFailed().WithCause(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, auth.ErrHashingFailed().WithCause(err)
	}
	// argon2 panics on zero rounds or lanes.
	if time < 1 || threads < 1 || len(expected) == 0 {
		return false, auth.ErrHashingFailed().WithDetail("reason", "invalid hash parameters")
	}

	actual := argon2.IDKey([]byte(plain), rawSalt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}
