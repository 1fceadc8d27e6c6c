package credential_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credential "github.com/arietis/go-credential"
)

func TestActivateUserMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     credential.ActivateUserMessage
		wantErr bool
	}{
		{name: "valid message", msg: credential.ActivateUserMessage{Token: "some-token", Code: "1234"}},
		{name: "missing token", msg: credential.ActivateUserMessage{Code: "1234"}, wantErr: true},
		{name: "missing code", msg: credential.ActivateUserMessage{Token: "some-token"}, wantErr: true},
		{name: "short code", msg: credential.ActivateUserMessage{Token: "some-token", Code: "123"}, wantErr: true},
		{name: "non numeric code", msg: credential.ActivateUserMessage{Token: "some-token", Code: "12ab"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// conflictedStore reports a uniqueness conflict on every create and loses
// its lookups from that point on, simulating a store that degrades mid
// activation.
type conflictedStore struct {
	*credential.MemoryUserStore
	lookupsDown bool
}

func (s *conflictedStore) Create(ctx context.Context, user *credential.User) (*credential.User, error) {
	s.lookupsDown = true
	return nil, credential.ErrConstraintViolation
}

func (s *conflictedStore) FindByEmail(ctx context.Context, email string) (*credential.User, error) {
	if s.lookupsDown {
		return nil, goerrors.New("connection reset", goerrors.CategoryInternal)
	}
	return s.MemoryUserStore.FindByEmail(ctx, email)
}

func TestActivateUserHandler_Execute(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, store credential.UserStore, activation *credential.ActivationService) (string, string) {
		t.Helper()

		var dispatched string
		notifier := &MockNotifier{}
		notifier.On("SendActivationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				dispatched = args.String(3)
			}).
			Return(nil)

		handler := credential.NewRegisterUserHandler(store, credential.NewHasher(0), activation, notifier)

		token, err := handler.Execute(ctx, registerAnnMessage())
		require.NoError(t, err)

		return token, dispatched
	}

	t.Run("persists the pending user on a valid token and code", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		handler := credential.NewActivateUserHandler(store, activation)

		user, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ann", user.Name)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.Equal(t, "15550001111", user.Phone)
		assert.NotEqual(t, "securePassword123!", user.PasswordHash)

		found, err := store.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("rejects a wrong code", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec(),
			credential.WithActivationCodeSource(func() (string, error) { return "1234", nil }))
		token, _ := register(t, store, activation)

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: "9999"})

		require.Error(t, err)
		assert.True(t, credential.IsCodeMismatchError(err))

		users, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("rejects an expired token distinctly", func(t *testing.T) {
		current := time.Now()
		store := credential.NewMemoryUserStore()
		codec := newActivationCodec(credential.WithCodecClock(func() time.Time { return current }))
		activation := credential.NewActivationService(codec)
		token, code := register(t, store, activation)

		current = current.Add(credential.DefaultActivationTTL + time.Minute)

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsTokenExpiredError(err))
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: flipLastChar(token), Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsTokenInvalidError(err))
	})

	t.Run("rejects when the email was claimed since registration", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		seedUser(t, store, "ann@example.com", "15559998888")

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsDuplicateEmailError(err))
	})

	t.Run("rejects when the phone was claimed since registration", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		seedUser(t, store, "bob@example.com", "15550001111")

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsDuplicatePhoneError(err))
	})

	t.Run("second redemption of the same token fails as duplicate", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})
		require.NoError(t, err)

		_, err = handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsDuplicateEmailError(err))
	})

	t.Run("a failing lookup after a write conflict is not reported as a duplicate", func(t *testing.T) {
		store := &conflictedStore{MemoryUserStore: credential.NewMemoryUserStore()}
		activation := credential.NewActivationService(newActivationCodec())
		token, code := register(t, store, activation)

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: token, Code: code})

		require.Error(t, err)
		assert.True(t, credential.IsDependencyUnavailableError(err))
		assert.False(t, credential.IsDuplicatePhoneError(err))
		assert.False(t, credential.IsDuplicateEmailError(err))
	})

	t.Run("rejects invalid input before touching the ticket", func(t *testing.T) {
		store := credential.NewMemoryUserStore()
		activation := credential.NewActivationService(newActivationCodec())

		handler := credential.NewActivateUserHandler(store, activation)

		_, err := handler.Execute(ctx, credential.ActivateUserMessage{Token: "", Code: "12"})

		require.Error(t, err)
		assert.True(t, credential.IsInvalidInputError(err))
	})
}
