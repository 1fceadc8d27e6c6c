package credential

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted identity model. Email and phone number are each
// globally unique; the database constraint is the final arbiter against
// concurrent activations.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number,notnull,unique" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PendingUser is a registration that has not been activated yet. It exists
// only inside an activation token's payload and is never persisted until
// activation succeeds. PasswordHash is always a digest, never the plaintext.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Phone        string `json:"phone_number"`
}

// TokenPair is the access/refresh credential pair issued on login. Each
// token embeds the subject id and its own issuance/expiry times, signed
// with independent secrets.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// AuthContext is attached to a request after successful guard evaluation.
// It is request-scoped and never stored server-side.
type AuthContext struct {
	IdentityID   string
	AccessToken  string
	RefreshToken string
}

// UserUUID parses the authenticated identity id.
func (a *AuthContext) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(a.IdentityID)
}
