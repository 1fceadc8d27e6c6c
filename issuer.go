package credential

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// tokenSubject is the payload of access and refresh tokens.
type tokenSubject struct {
	IdentityID string `json:"uid"`
}

// TokenIssuer mints the access/refresh pair for an authenticated identity.
// The two tokens are signed with distinct secrets and lifetimes so a leaked
// access secret cannot forge refresh credentials.
type TokenIssuer struct {
	access     *TokenCodec
	refresh    *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

type IssuerOption func(*TokenIssuer)

// WithIssuerLogger overrides the issuer logger.
func WithIssuerLogger(logger Logger) IssuerOption {
	return func(t *TokenIssuer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithIssuerClock injects a custom clock into both codecs (useful for tests).
func WithIssuerClock(clock func() time.Time) IssuerOption {
	return func(t *TokenIssuer) {
		if clock != nil {
			WithCodecClock(clock)(t.access)
			WithCodecClock(clock)(t.refresh)
		}
	}
}

// NewTokenIssuer builds an issuer from the engine configuration. Zero
// lifetimes fall back to the defaults.
func NewTokenIssuer(cfg Config, opts ...IssuerOption) *TokenIssuer {
	cfg = cfg.WithDefaults()

	t := &TokenIssuer{
		access:     NewTokenCodec([]byte(cfg.AccessSecret), cfg.Issuer),
		refresh:    NewTokenCodec([]byte(cfg.RefreshSecret), cfg.Issuer),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Issue creates the token pair for identityID. Both tokens carry the
// subject id and their own issuance time.
func (t *TokenIssuer) Issue(identityID string) (TokenPair, error) {
	if identityID == "" {
		return TokenPair{}, goerrors.New("identity id is required", goerrors.CategoryBadInput)
	}

	subject := tokenSubject{IdentityID: identityID}

	access, err := t.access.Encode(subject, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := t.refresh.Encode(subject, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccess validates the refresh credential and re-issues only a new
// access token. The refresh token itself is returned to the client
// unchanged; this design does not rotate refresh tokens.
func (t *TokenIssuer) RefreshAccess(refreshToken string) (string, error) {
	var subject tokenSubject
	if err := t.refresh.Decode(refreshToken, &subject); err != nil {
		return "", err
	}

	return t.access.Encode(subject, t.accessTTL)
}

// DecodeAccess validates an access token and returns the subject id.
func (t *TokenIssuer) DecodeAccess(accessToken string) (string, error) {
	var subject tokenSubject
	if err := t.access.Decode(accessToken, &subject); err != nil {
		return "", err
	}
	return subject.IdentityID, nil
}

// Attach hands the pair to the outbound carrier. Ownership of the tokens
// passes to the client from here on.
func (t *TokenIssuer) Attach(carrier CredentialCarrier, pair TokenPair) {
	if carrier == nil {
		return
	}
	carrier.Attach(pair.Access, pair.Refresh)
}
