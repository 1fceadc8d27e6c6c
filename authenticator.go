package credential

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Auther implements Authenticator: password login, guarded current-user
// resolution, and carrier-clearing logout. Logout cannot revoke issued
// tokens server-side because sessions live entirely in the tokens.
type Auther struct {
	store  UserStore
	hasher PasswordHasher
	issuer *TokenIssuer
	guard  *Guard
	logger Logger
}

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(store UserStore, hasher PasswordHasher, issuer *TokenIssuer) *Auther {
	return &Auther{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		guard:  NewGuard(issuer),
		logger: defLogger{},
	}
}

// WithLogger overrides the authenticator logger.
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
		a.guard = NewGuard(a.issuer, WithGuardLogger(logger))
	}
	return a
}

// Guard exposes the request guard used by this authenticator.
func (a *Auther) Guard() *Guard {
	return a.guard
}

var _ Authenticator = (*Auther)(nil)

// Login verifies credentials and issues the token pair. Unknown email and
// wrong password fail identically so the response never reveals which
// field was wrong.
func (a *Auther) Login(ctx context.Context, email, password string) (*User, TokenPair, error) {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		a.logger.Error("login lookup failed", "error", err)
		return nil, TokenPair{}, goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store lookup failed").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	if err := a.hasher.Verify(password, user.PasswordHash); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issuer.Issue(user.ID.String())
	if err != nil {
		a.logger.Error("login token issuance failed", "error", err)
		return nil, TokenPair{}, err
	}

	return user, pair, nil
}

// LoginWithCarrier performs Login and attaches the pair to the outbound
// carrier.
func (a *Auther) LoginWithCarrier(ctx context.Context, email, password string, carrier CredentialCarrier) (*User, error) {
	user, pair, err := a.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	a.issuer.Attach(carrier, pair)
	return user, nil
}

// CurrentUser resolves the identity behind the carrier's tokens, running
// the guard (including the silent refresh path) first.
func (a *Auther) CurrentUser(ctx context.Context, carrier CredentialCarrier) (*User, error) {
	authCtx, err := a.guard.Authenticate(ctx, carrier)
	if err != nil {
		return nil, err
	}

	id, err := authCtx.UserUUID()
	if err != nil {
		a.logger.Error("authenticated subject is not a valid id", "subject", authCtx.IdentityID)
		return nil, ErrUnauthenticated
	}

	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Token outlived the identity it was minted for.
			return nil, ErrUnauthenticated
		}
		return nil, goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store lookup failed").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	return user, nil
}

// ListUsers returns every persisted identity.
func (a *Auther) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store listing failed").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}
	return users, nil
}

// Logout clears the carrier. Issued tokens stay valid until expiry since
// there is no server-side revocation list.
func (a *Auther) Logout(carrier CredentialCarrier) {
	if carrier != nil {
		carrier.Clear()
	}
}
