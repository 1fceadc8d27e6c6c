package credential

import (
	"context"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MemoryUserStore keeps users in process memory. It enforces the same
// unique email and phone constraints a relational store would, which
// makes it a faithful stand-in for tests and examples.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	byPhone map[string]uuid.UUID
	order   []uuid.UUID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		byPhone: make(map[string]uuid.UUID),
	}
}

var _ UserStore = (*MemoryUserStore)(nil)

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeKey(email)]
	if !ok {
		return nil, goerrors.Wrap(ErrIdentityNotFound, goerrors.CategoryNotFound, "no user with email").
			WithMetadata(map[string]any{"email": email})
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryUserStore) FindByPhone(ctx context.Context, phone string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPhone[normalizeKey(phone)]
	if !ok {
		return nil, goerrors.Wrap(ErrIdentityNotFound, goerrors.CategoryNotFound, "no user with phone").
			WithMetadata(map[string]any{"phone": phone})
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, goerrors.Wrap(ErrIdentityNotFound, goerrors.CategoryNotFound, "no user with id").
			WithMetadata(map[string]any{"id": id.String()})
	}
	return cloneUser(user), nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if user == nil {
		return nil, goerrors.New("cannot create nil user", goerrors.CategoryBadInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := normalizeKey(user.Email)
	phoneKey := normalizeKey(user.Phone)

	if _, taken := s.byEmail[emailKey]; taken {
		return nil, goerrors.Wrap(ErrConstraintViolation, goerrors.CategoryConflict, "unique constraint failed").
			WithMetadata(map[string]any{"constraint": "users.email"})
	}

	if _, taken := s.byPhone[phoneKey]; taken {
		return nil, goerrors.Wrap(ErrConstraintViolation, goerrors.CategoryConflict, "unique constraint failed").
			WithMetadata(map[string]any{"constraint": "users.phone_number"})
	}

	record := cloneUser(user)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	s.byID[record.ID] = record
	s.byEmail[emailKey] = record.ID
	s.byPhone[phoneKey] = record.ID
	s.order = append(s.order, record.ID)

	return cloneUser(record), nil
}

func (s *MemoryUserStore) ListAll(ctx context.Context) ([]*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneUser(s.byID[id]))
	}
	return out, nil
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
