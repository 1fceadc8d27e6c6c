package credential

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a bcrypt-backed PasswordHasher with an adjustable work factor.
// Hashing is randomized: the same plaintext yields a different digest on
// every call. Verification delegates the timing-safe comparison to bcrypt.
type Hasher struct {
	cost   int
	logger Logger
}

type HasherOption func(*Hasher)

// WithHasherLogger overrides the hasher logger.
func WithHasherLogger(logger Logger) HasherOption {
	return func(h *Hasher) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHasher returns a Hasher with the given cost. Non-positive costs fall
// back to the default work factor; costs above the bcrypt ceiling are
// clamped rather than failing every hash call.
func NewHasher(cost int, opts ...HasherOption) *Hasher {
	if cost <= 0 {
		cost = passwordHashCost()
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	h := &Hasher{cost: cost, logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

var _ PasswordHasher = (*Hasher)(nil)

// Hash will generate a salted password digest. The plaintext is never
// logged or returned.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(digest), err
}

// Verify will validate the given cleartext password matches the digest.
func (h *Hasher) Verify(password, digest string) error {
	return ComparePasswordAndHash(password, digest)
}

// HashPassword will generate a password hash using the default work factor.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(digest), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
