package credential_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credential "github.com/arietis/go-credential"
)

func newActivationCodec(opts ...credential.CodecOption) *credential.TokenCodec {
	return credential.NewTokenCodec([]byte("activation-secret-0000001"), "test-issuer", opts...)
}

func pendingAnn() credential.PendingUser {
	return credential.PendingUser{
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefak",
		Phone:        "15550001111",
	}
}

func TestActivationService_Create(t *testing.T) {
	t.Run("returns a token and a four digit code", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec())

		token, code, err := service.Create(pendingAnn())

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	})

	t.Run("rejects pending users without email or hash", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec())

		_, _, err := service.Create(credential.PendingUser{Name: "Ann"})
		assert.True(t, credential.IsInvalidInputError(err))

		_, _, err = service.Create(credential.PendingUser{Email: "ann@example.com"})
		assert.True(t, credential.IsInvalidInputError(err))
	})

	t.Run("honors a custom code source", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec(),
			credential.WithActivationCodeSource(func() (string, error) {
				return "4321", nil
			}))

		_, code, err := service.Create(pendingAnn())

		require.NoError(t, err)
		assert.Equal(t, "4321", code)
	})
}

func TestActivationService_Redeem(t *testing.T) {
	t.Run("returns the pending user on a matching code", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec())
		pending := pendingAnn()

		token, code, err := service.Create(pending)
		require.NoError(t, err)

		redeemed, err := service.Redeem(token, code)

		require.NoError(t, err)
		assert.Equal(t, pending, redeemed)
	})

	t.Run("rejects a wrong code without revealing the right one", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec(),
			credential.WithActivationCodeSource(func() (string, error) {
				return "1234", nil
			}))

		token, _, err := service.Create(pendingAnn())
		require.NoError(t, err)

		_, err = service.Redeem(token, "9999")

		require.Error(t, err)
		assert.True(t, credential.IsCodeMismatchError(err))
		assert.NotContains(t, err.Error(), "1234")
	})

	t.Run("rejects an expired ticket distinctly", func(t *testing.T) {
		current := time.Now()
		codec := newActivationCodec(credential.WithCodecClock(func() time.Time { return current }))
		service := credential.NewActivationService(codec,
			credential.WithActivationTTL(5*time.Minute))

		token, code, err := service.Create(pendingAnn())
		require.NoError(t, err)

		current = current.Add(6 * time.Minute)

		_, err = service.Redeem(token, code)

		require.Error(t, err)
		assert.True(t, credential.IsTokenExpiredError(err))
		assert.False(t, credential.IsCodeMismatchError(err))
	})

	t.Run("rejects a tampered ticket even with the right code", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec())

		token, code, err := service.Create(pendingAnn())
		require.NoError(t, err)

		_, err = service.Redeem(flipLastChar(token), code)

		require.Error(t, err)
		assert.True(t, credential.IsTokenInvalidError(err))
	})

	t.Run("token remains redeemable more than once before expiry", func(t *testing.T) {
		service := credential.NewActivationService(newActivationCodec())

		token, code, err := service.Create(pendingAnn())
		require.NoError(t, err)

		_, err = service.Redeem(token, code)
		require.NoError(t, err)

		_, err = service.Redeem(token, code)
		assert.NoError(t, err)
	})
}
