package credential

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// BunUserStore persists users through bun, delegating CRUD plumbing to
// the generic repository and exposing the lookups the engine needs.
type BunUserStore struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

func NewBunUserStore(db *bun.DB) *BunUserStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string { return "email" },
	})

	return &BunUserStore{
		repo: repo,
		db:   db,
	}
}

// NewSQLiteUserStore opens an in-process SQLite database, creates the
// users table if missing, and returns a store backed by it.
func NewSQLiteUserStore(dsn string) (*BunUserStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(context.Background()); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}

	return NewBunUserStore(db), nil
}

var _ UserStore = (*BunUserStore)(nil)

func (s *BunUserStore) DB() *bun.DB {
	return s.db
}

func (s *BunUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findByColumn(ctx, "email", normalizeKey(email))
}

func (s *BunUserStore) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return s.findByColumn(ctx, "phone_number", normalizeKey(phone))
}

func (s *BunUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.findByColumn(ctx, "id", id.String())
}

func (s *BunUserStore) findByColumn(ctx context.Context, column, value string) (*User, error) {
	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		// Misses must satisfy goerrors.IsNotFound so callers can tell
		// "no such user" apart from a store failure.
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(ErrIdentityNotFound, goerrors.CategoryNotFound, "no user matched").
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}

	return record, nil
}

func (s *BunUserStore) Create(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, goerrors.New("cannot create nil user", goerrors.CategoryBadInput)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	// Persist the same normalized form the lookups query with, so the
	// unique index also catches case-variant duplicates.
	user.Email = normalizeKey(user.Email)
	user.Phone = normalizeKey(user.Phone)

	created, err := s.repo.CreateTx(ctx, s.db, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(ErrConstraintViolation, goerrors.CategoryConflict, "unique constraint failed").
				WithMetadata(map[string]any{
					"email": user.Email,
					"phone": user.Phone,
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist user")
	}

	return created, nil
}

func (s *BunUserStore) ListAll(ctx context.Context) ([]*User, error) {
	var records []*User
	err := s.db.NewSelect().
		Model(&records).
		Order("usr.created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	return records, nil
}

// isUniqueViolation matches the driver specific messages for unique
// index violations across sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}
