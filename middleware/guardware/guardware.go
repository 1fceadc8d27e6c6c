// Package guardware gates routes behind an authenticated credential
// pair, refreshing the access token in place when it has expired.
package guardware

import (
	"context"

	"github.com/goliatone/go-router"

	credential "github.com/arietis/go-credential"
)

// CarrierFactory builds the credential carrier used to read and write
// tokens on a given exchange. Defaults to cookies.
type CarrierFactory func(router.Context) credential.CredentialCarrier

type Config struct {
	// Guard performs authentication and silent refresh. Required.
	Guard *credential.Guard

	// Carrier overrides how tokens travel with the request.
	Carrier CarrierFactory

	// Filter skips the middleware when it returns true.
	Filter func(router.Context) bool

	// SuccessHandler runs after authentication succeeds.
	SuccessHandler router.HandlerFunc

	// ErrorHandler maps authentication failures to responses.
	ErrorHandler router.ErrorHandler

	// ContextKey is the locals key holding the auth context.
	ContextKey string

	// ContextEnricher propagates the auth context to the standard Go
	// context. If nil the auth context is attached directly.
	ContextEnricher func(context.Context, *credential.AuthContext) context.Context
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			carrier := cfg.Carrier(ctx)

			authCtx, err := cfg.Guard.Authenticate(ctx.Context(), carrier)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, authCtx)

			stdCtx := cfg.ContextEnricher(ctx.Context(), authCtx)
			ctx.SetContext(stdCtx)

			return cfg.SuccessHandler(ctx)
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Guard == nil {
		panic("CRED: guard middleware configuration: Guard is required.")
	}

	if cfg.Carrier == nil {
		cfg.Carrier = func(ctx router.Context) credential.CredentialCarrier {
			return credential.NewCookieCarrier(ctx)
		}
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.Status(router.StatusUnauthorized).SendString("Invalid or expired credentials")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "auth"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = func(c context.Context, authCtx *credential.AuthContext) context.Context {
			return credential.WithAuthContext(c, authCtx)
		}
	}

	return cfg
}
