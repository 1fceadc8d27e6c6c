package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// activationTicket is the signed payload of an activation token: the
// pending user plus the one-time code. Embedding the code is safe because
// the token is tamper-evident, and it keeps the server free of OTP state.
type activationTicket struct {
	PendingUser PendingUser `json:"pending_user"`
	Code        string      `json:"activation_code"`
}

// ActivationService builds and validates short-lived activation tickets.
// The token string it returns is the only durable representation of a
// pending registration.
type ActivationService struct {
	codec      *TokenCodec
	ttl        time.Duration
	logger     Logger
	randomCode func() (string, error)
}

type ActivationOption func(*ActivationService)

// WithActivationTTL overrides the default 5 minute ticket lifetime.
func WithActivationTTL(ttl time.Duration) ActivationOption {
	return func(s *ActivationService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithActivationLogger overrides the service logger.
func WithActivationLogger(logger Logger) ActivationOption {
	return func(s *ActivationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivationCodeSource replaces the random code generator (useful for tests).
func WithActivationCodeSource(source func() (string, error)) ActivationOption {
	return func(s *ActivationService) {
		if source != nil {
			s.randomCode = source
		}
	}
}

// NewActivationService returns a service signing tickets with the given
// codec. The codec should be bound to a secret dedicated to activation.
func NewActivationService(codec *TokenCodec, opts ...ActivationOption) *ActivationService {
	s := &ActivationService{
		codec:      codec,
		ttl:        DefaultActivationTTL,
		logger:     defLogger{},
		randomCode: fourDigitCode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create signs pending together with a fresh 4-digit code and returns both.
// The code is meant to be delivered out-of-band; callers must never hand it
// to the registering client alongside the token.
func (s *ActivationService) Create(pending PendingUser) (string, string, error) {
	if pending.Email == "" || pending.PasswordHash == "" {
		return "", "", goerrors.New("pending user requires email and password hash", ErrInvalidInput.Category).
			WithTextCode(textCodeInvalidInput).
			WithCode(goerrors.CodeBadRequest)
	}

	code, err := s.randomCode()
	if err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation code")
	}

	token, err := s.codec.Encode(activationTicket{PendingUser: pending, Code: code}, s.ttl)
	if err != nil {
		return "", "", err
	}

	return token, code, nil
}

// Redeem validates the ticket and the supplied code, returning the pending
// user for persistence. It propagates the codec's expired/invalid failures
// distinctly and does not itself persist anything.
func (s *ActivationService) Redeem(token, suppliedCode string) (PendingUser, error) {
	var ticket activationTicket
	if err := s.codec.Decode(token, &ticket); err != nil {
		return PendingUser{}, err
	}

	// The MAC already guarantees ticket integrity; the constant-time
	// compare keeps the supplied code from leaking match position.
	if subtle.ConstantTimeCompare([]byte(ticket.Code), []byte(suppliedCode)) != 1 {
		s.logger.Debug("activation code mismatch", "email", ticket.PendingUser.Email)
		return PendingUser{}, ErrCodeMismatch
	}

	return ticket.PendingUser, nil
}

// fourDigitCode draws uniformly from [1000, 9999].
func fourDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}
