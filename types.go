package credential

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the persistence capability for identities. Implementations
// must enforce email and phone uniqueness at write time; Create returns
// ErrConstraintViolation (or an error carrying its text code) on conflict.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	ListAll(ctx context.Context) ([]*User, error)
}

// Notifier delivers activation codes out-of-band. A delivery failure aborts
// registration, since the user cannot complete activation without the code.
type Notifier interface {
	SendActivationCode(ctx context.Context, email, name, code string) error
}

// CredentialCarrier abstracts how tokens travel on a request-response
// exchange (cookies, headers). Attach writes to the outbound leg; the
// token accessors read the inbound leg.
type CredentialCarrier interface {
	Attach(access, refresh string)
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	Clear()
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) error
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*User, TokenPair, error)
	CurrentUser(ctx context.Context, carrier CredentialCarrier) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	Logout(carrier CredentialCarrier)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CRED "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CRED "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CRED "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CRED "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
