package credential

import (
	"context"
)

// Guard runs before protected operations. It validates the access token
// from the carrier and, when the token merely expired, transparently mints
// a fresh one from a still-valid refresh token. Tampered tokens are
// rejected immediately with no refresh attempt.
type Guard struct {
	issuer *TokenIssuer
	logger Logger
}

type GuardOption func(*Guard)

// WithGuardLogger overrides the guard logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard returns a guard validating tokens minted by issuer.
func NewGuard(issuer *TokenIssuer, opts ...GuardOption) *Guard {
	g := &Guard{issuer: issuer, logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Authenticate evaluates the carrier's tokens and returns the
// authenticated-identity context. All failures surface uniformly as
// ErrUnauthenticated; the internal cause (missing, expired, tampered) is
// only logged so callers cannot distinguish which.
func (g *Guard) Authenticate(ctx context.Context, carrier CredentialCarrier) (*AuthContext, error) {
	select {
	case <-ctx.Done():
		return nil, ErrUnauthenticated
	default:
	}

	if carrier == nil {
		return nil, ErrUnauthenticated
	}

	access, ok := carrier.AccessToken()
	if !ok {
		g.logger.Debug("guard rejected request: no access token")
		return nil, ErrUnauthenticated
	}

	identityID, err := g.issuer.DecodeAccess(access)
	if err == nil {
		refresh, _ := carrier.RefreshToken()
		return &AuthContext{
			IdentityID:   identityID,
			AccessToken:  access,
			RefreshToken: refresh,
		}, nil
	}

	if !IsTokenExpiredError(err) {
		// Tampered or malformed: corruption never earns a refresh attempt.
		g.logger.Warn("guard rejected invalid access token", "error", err)
		return nil, ErrUnauthenticated
	}

	return g.refresh(carrier)
}

// refresh extends a session whose access token expired while the refresh
// token remains valid, attaching the fresh access token outbound.
func (g *Guard) refresh(carrier CredentialCarrier) (*AuthContext, error) {
	refreshToken, ok := carrier.RefreshToken()
	if !ok {
		g.logger.Debug("guard rejected expired session: no refresh token")
		return nil, ErrUnauthenticated
	}

	access, err := g.issuer.RefreshAccess(refreshToken)
	if err != nil {
		g.logger.Info("guard could not refresh session", "error", err)
		return nil, ErrUnauthenticated
	}

	identityID, err := g.issuer.DecodeAccess(access)
	if err != nil {
		g.logger.Error("guard minted an unreadable access token", "error", err)
		return nil, ErrUnauthenticated
	}

	carrier.Attach(access, refreshToken)

	return &AuthContext{
		IdentityID:   identityID,
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}
