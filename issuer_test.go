package credential_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credential "github.com/arietis/go-credential"
)

func issuerConfig() credential.Config {
	return credential.Config{
		ActivationSecret: "activation-secret-0000001",
		AccessSecret:     "access-secret-000000000001",
		RefreshSecret:    "refresh-secret-00000000001",
		Issuer:           "test-issuer",
	}
}

func TestTokenIssuer_Issue(t *testing.T) {
	t.Run("mints a distinct access and refresh pair", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		pair, err := issuer.Issue("user-1")

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)
	})

	t.Run("rejects an empty identity id", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		_, err := issuer.Issue("")

		assert.Error(t, err)
	})

	t.Run("access token decodes back to the identity", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		pair, err := issuer.Issue("user-1")
		require.NoError(t, err)

		id, err := issuer.DecodeAccess(pair.Access)

		require.NoError(t, err)
		assert.Equal(t, "user-1", id)
	})

	t.Run("refresh token is not a valid access token", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		pair, err := issuer.Issue("user-1")
		require.NoError(t, err)

		_, err = issuer.DecodeAccess(pair.Refresh)

		assert.Error(t, err)
	})
}

func TestTokenIssuer_RefreshAccess(t *testing.T) {
	t.Run("mints a fresh access token from a valid refresh token", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		pair, err := issuer.Issue("user-1")
		require.NoError(t, err)

		access, err := issuer.RefreshAccess(pair.Refresh)

		require.NoError(t, err)
		assert.NotEqual(t, pair.Access, access)

		id, err := issuer.DecodeAccess(access)
		require.NoError(t, err)
		assert.Equal(t, "user-1", id)
	})

	t.Run("rejects an access token used as refresh credential", func(t *testing.T) {
		issuer := credential.NewTokenIssuer(issuerConfig())

		pair, err := issuer.Issue("user-1")
		require.NoError(t, err)

		_, err = issuer.RefreshAccess(pair.Access)

		assert.Error(t, err)
	})

	t.Run("rejects an expired refresh token", func(t *testing.T) {
		current := time.Now()
		issuer := credential.NewTokenIssuer(issuerConfig(),
			credential.WithIssuerClock(func() time.Time { return current }))

		pair, err := issuer.Issue("user-1")
		require.NoError(t, err)

		current = current.Add(credential.DefaultRefreshTTL + time.Hour)

		_, err = issuer.RefreshAccess(pair.Refresh)

		require.Error(t, err)
		assert.True(t, credential.IsTokenExpiredError(err))
	})
}

func TestTokenIssuer_Attach(t *testing.T) {
	issuer := credential.NewTokenIssuer(issuerConfig())

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	carrier := &credential.MemoryCarrier{}
	issuer.Attach(carrier, pair)

	access, ok := carrier.AccessToken()
	require.True(t, ok)
	assert.Equal(t, pair.Access, access)

	refresh, ok := carrier.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, pair.Refresh, refresh)
}
