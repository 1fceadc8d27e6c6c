package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// signedClaims wraps an opaque payload in registered claims. The codec does
// not interpret the payload; callers marshal their own shapes into it.
type signedClaims struct {
	jwt.RegisteredClaims
	Payload json.RawMessage `json:"pld,omitempty"`
}

// TokenCodec encodes a payload into a tamper-evident, expiring token and
// decodes it back. Validation is a pure function of (token, secret, clock):
// issuance and expiry live inside the signed claims, never in server state.
type TokenCodec struct {
	secret []byte
	issuer string
	logger Logger
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithCodecLogger overrides the codec logger.
func WithCodecLogger(logger Logger) CodecOption {
	return func(c *TokenCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCodecClock injects a custom clock (useful for tests).
func WithCodecClock(clock func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewTokenCodec returns a codec bound to one signing secret.
func NewTokenCodec(secret []byte, issuer string, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		secret: secret,
		issuer: issuer,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Encode marshals payload into the signed claims and returns the compact
// token string. The computed expiry is embedded in the signature's reach,
// so it cannot be extended without the secret.
func (c *TokenCodec) Encode(payload any, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", goerrors.New("codec requires a signing secret", goerrors.CategoryInternal)
	}
	if ttl <= 0 {
		return "", goerrors.New("token TTL must be positive", goerrors.CategoryBadInput)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal token payload")
	}

	now := c.now()
	claims := &signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Payload: raw,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode verifies signature and expiry, then unmarshals the payload into
// out (which may be nil when the caller only needs validation). Expired and
// tampered/malformed tokens fail distinctly so callers can branch.
func (c *TokenCodec) Decode(tokenString string, out any) error {
	parserOptions := []jwt.ParserOption{jwt.WithTimeFunc(c.now)}
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &signedClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("codec encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return goerrors.Wrap(err, ErrTokenExpired.Category, ErrTokenExpired.Message).
				WithTextCode(textCodeTokenExpired).
				WithCode(goerrors.CodeUnauthorized)
		}
		return goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(textCodeTokenInvalid).
			WithCode(goerrors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*signedClaims)
	if !ok || !token.Valid {
		c.logger.Error("codec could not decode or validate claims")
		return ErrTokenInvalid
	}

	if out == nil || len(claims.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(claims.Payload, out); err != nil {
		return goerrors.Wrap(err, ErrTokenInvalid.Category, "failed to unmarshal token payload").
			WithTextCode(textCodeTokenInvalid).
			WithCode(goerrors.CodeUnauthorized)
	}

	return nil
}
