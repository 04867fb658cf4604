// Package iam (Identity and Access Management) holds the account side of the
// service: registration with e-mail verification, sign-in, stateless session
// tokens and profile management.
//
// # Overview
//
//   - iam/auth          JWT token issuer, token middleware, password and audit ports
//   - iam/otp           one-time code generation, hashing and the freshness rule
//   - iam/user          identity record, profile projection, repository port
//   - iam/apikey        static service key gate in front of every /api route
//   - iam/account       registration/verification state machine and session manager
//   - iam/iamcontainer  wiring of the graph above
//
// # Architecture
//
//	HTTP Handler  →  Service Layer  →  Repository Interface  →  Infrastructure (Mongo/Postgres/Memory)
//
// Each sub-domain exposes its own error registry ("IAM", "USER", "ACCOUNT",
// "OTP") so the HTTP layer can map a failure to a status code without knowing
// where it came from.
//
// # Identity lifecycle
//
// Per e-mail address an identity is NONE, PROVISIONAL or VERIFIED:
//
//	register(email)        NONE        → PROVISIONAL   (OTP mailed, verification token returned)
//	register(google, ...)  NONE        → VERIFIED      (session pair returned)
//	register(email)        PROVISIONAL → PROVISIONAL   (old record deleted, new OTP)
//	verify-email(token,otp) PROVISIONAL → VERIFIED     (session pair returned)
//	login(email,password)  PROVISIONAL → NONE          (record deleted, generic failure)
//
// A verified identity's provider is authoritative; attempts through another
// provider fail with ACCOUNT_WRONG_PROVIDER and are never merged.
//
// # Tokens
//
// Tokens are HS256 JWTs and are never persisted. The audience claim encodes
// the kind:
//
//	access        {email, role}   JWT_ACCESS_TTL        (default 24h)
//	refresh       {email, role}   JWT_REFRESH_TTL       (default 168h)
//	verification  {email}         JWT_VERIFICATION_TTL  (default 24h)
//
// There is no revocation list. A deleted or demoted account keeps working
// until its tokens expire.
//
// # Middleware
//
//	app.Use("/api", apikey.RequireKey(key))
//	protected := app.Group("/api/user", tokenMiddleware.Authenticate(auth.TokenKindAccess))
//
// Handlers read the caller from fiber locals:
//
//	ac, ok := auth.FromFiber(c)
package iam
