package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService implements TokenService with HS256 JWTs.
type JWTService struct {
	secretKey       []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	verificationTTL time.Duration
	clock           kernel.Clock
}

// JWTConfig carries the signing key and lifetimes. The key is read once at
// startup and never rotated while the process runs.
type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
}

func NewJWTService(cfg JWTConfig, clock kernel.Clock) *JWTService {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "quizcraft"
	}
	if clock == nil {
		clock = kernel.SystemClock{}
	}

	return &JWTService{
		secretKey:       []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		accessTokenTTL:  cfg.AccessTTL,
		refreshTokenTTL: cfg.RefreshTTL,
		verificationTTL: cfg.VerificationTTL,
		clock:           clock,
	}
}

// jwtClaims is the wire form of TokenClaims
type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var audiences = map[TokenKind]string{
	TokenKindAccess:       "quizcraft-api",
	TokenKindRefresh:      "quizcraft-refresh",
	TokenKindVerification: "quizcraft-verify",
}

func kindFromAudience(aud jwt.ClaimStrings) (TokenKind, bool) {
	for kind, name := range audiences {
		if slices.Contains(aud, name) {
			return kind, true
		}
	}
	return "", false
}

// Issue signs claims with an expiry of ttl from now.
func (j *JWTService) Issue(claims TokenClaims, ttl time.Duration) (string, error) {
	aud, ok := audiences[claims.Kind]
	if !ok {
		return "", ErrTokenGenerationFailed().WithDetail("kind", string(claims.Kind))
	}

	now := j.clock.Now()
	wire := jwtClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   claims.Subject,
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithCause(err)
	}
	return signed, nil
}

// Verify validates signature, issuer and expiry. A token of a kind not in
// kinds is rejected as invalid.
func (j *JWTService) Verify(tokenString string, kinds ...TokenKind) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, iam.ErrUnauthorized()
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, iam.ErrTokenExpired().WithCause(err)
		}
		return nil, iam.ErrInvalidToken().WithCause(err)
	}

	wire, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, iam.ErrInvalidToken()
	}

	kind, ok := kindFromAudience(wire.Audience)
	if !ok {
		return nil, iam.ErrInvalidToken().WithDetail("reason", "unknown audience")
	}
	if len(kinds) > 0 && !slices.Contains(kinds, kind) {
		return nil, iam.ErrInvalidToken().WithDetail("reason", "wrong token kind")
	}

	return &TokenClaims{
		Subject:   wire.Subject,
		Email:     wire.Email,
		Role:      wire.Role,
		Kind:      kind,
		IssuedAt:  wire.IssuedAt.UTC(),
		ExpiresAt: wire.ExpiresAt.UTC(),
	}, nil
}

// IssueSessionPair mints an access and a refresh token carrying {email, role}.
func (j *JWTService) IssueSessionPair(email, role string) (*SessionPair, error) {
	access, err := j.Issue(TokenClaims{Email: email, Role: role, Kind: TokenKindAccess}, j.accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := j.Issue(TokenClaims{Email: email, Role: role, Kind: TokenKindRefresh}, j.refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &SessionPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    j.clock.Now().Add(j.accessTokenTTL).Truncate(time.Second),
	}, nil
}

// IssueVerificationToken mints the {email} token handed out at registration.
func (j *JWTService) IssueVerificationToken(subject, email string) (string, error) {
	return j.Issue(TokenClaims{Subject: subject, Email: email, Kind: TokenKindVerification}, j.verificationTTL)
}
