// Package credential implements a stateless credential lifecycle engine:
// two-phase registration (submit + email-code activation), password login
// issuing an access/refresh token pair, and a guard that authorizes
// subsequent requests.
//
// Token handling:
//   - TokenCodec signs an opaque payload into a tamper-evident, expiring
//     token. Validation is a pure function of (token, secret, clock), so
//     the server holds no session or OTP state.
//   - ActivationService bundles a not-yet-persisted user with a 4-digit
//     code inside a signed short-lived token. The token string is the only
//     durable representation of a pending registration.
//   - TokenIssuer mints the access/refresh pair with distinct secrets and
//     lifetimes. Refresh re-issues the access token only; refresh tokens
//     are not rotated.
//
// Request authorization:
//   - Guard reads tokens from a CredentialCarrier (cookies, headers, or an
//     in-memory pair) and transparently extends a session whose access
//     token merely expired while the refresh token remains valid. Tampered
//     tokens are rejected without a refresh attempt.
//
// Persistence and delivery are consumed as capabilities: UserStore owns
// identities and enforces email/phone uniqueness at write time, Notifier
// delivers activation codes out-of-band.
package credential
