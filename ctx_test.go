package credential_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credential "github.com/arietis/go-credential"
)

func TestAuthContextRoundTrip(t *testing.T) {
	t.Run("stores and retrieves the auth context", func(t *testing.T) {
		authCtx := &credential.AuthContext{
			IdentityID:  uuid.NewString(),
			AccessToken: "some-access-token",
		}

		ctx := credential.WithAuthContext(context.Background(), authCtx)

		got, ok := credential.AuthFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, authCtx, got)
	})

	t.Run("missing auth context reports false", func(t *testing.T) {
		got, ok := credential.AuthFromContext(context.Background())

		assert.False(t, ok)
		assert.Nil(t, got)
	})
}

func TestAuthContext_UserUUID(t *testing.T) {
	t.Run("parses a valid identity id", func(t *testing.T) {
		id := uuid.New()
		authCtx := &credential.AuthContext{IdentityID: id.String()}

		parsed, err := authCtx.UserUUID()

		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("rejects a malformed identity id", func(t *testing.T) {
		authCtx := &credential.AuthContext{IdentityID: "not-a-uuid"}

		_, err := authCtx.UserUUID()

		assert.Error(t, err)
	})
}
