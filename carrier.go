package credential

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

const (
	// DefaultAccessCookie is the cookie carrying the access token.
	DefaultAccessCookie = "access_token"
	// DefaultRefreshCookie is the cookie carrying the refresh token.
	DefaultRefreshCookie = "refresh_token"
	// RefreshHeader carries the refresh token on header transports.
	RefreshHeader = "X-Refresh-Token"

	authScheme = "Bearer"
)

// CookieCarrier transports tokens as HTTP-only cookies on a router
// request-response exchange.
type CookieCarrier struct {
	ctx         router.Context
	accessName  string
	refreshName string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

type CookieCarrierOption func(*CookieCarrier)

// WithCookieNames overrides the access/refresh cookie names.
func WithCookieNames(access, refresh string) CookieCarrierOption {
	return func(c *CookieCarrier) {
		if access != "" {
			c.accessName = access
		}
		if refresh != "" {
			c.refreshName = refresh
		}
	}
}

// WithCookieTTLs aligns cookie expiry with the token lifetimes.
func WithCookieTTLs(access, refresh time.Duration) CookieCarrierOption {
	return func(c *CookieCarrier) {
		if access > 0 {
			c.accessTTL = access
		}
		if refresh > 0 {
			c.refreshTTL = refresh
		}
	}
}

// NewCookieCarrier wraps a router context as a CredentialCarrier.
func NewCookieCarrier(ctx router.Context, opts ...CookieCarrierOption) *CookieCarrier {
	c := &CookieCarrier{
		ctx:         ctx,
		accessName:  DefaultAccessCookie,
		refreshName: DefaultRefreshCookie,
		accessTTL:   DefaultAccessTTL,
		refreshTTL:  DefaultRefreshTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var _ CredentialCarrier = (*CookieCarrier)(nil)

func (c *CookieCarrier) Attach(access, refresh string) {
	c.setCookie(c.accessName, access, c.accessTTL)
	if refresh != "" {
		c.setCookie(c.refreshName, refresh, c.refreshTTL)
	}
}

func (c *CookieCarrier) AccessToken() (string, bool) {
	v := c.ctx.Cookies(c.accessName)
	return v, v != ""
}

func (c *CookieCarrier) RefreshToken() (string, bool) {
	v := c.ctx.Cookies(c.refreshName)
	return v, v != ""
}

func (c *CookieCarrier) Clear() {
	c.cookieDel(c.accessName)
	c.cookieDel(c.refreshName)
}

func (c *CookieCarrier) setCookie(name, val string, duration time.Duration) {
	c.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (c *CookieCarrier) cookieDel(name string) {
	c.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// HeaderCarrier transports tokens as headers: the access token as an
// Authorization bearer credential, the refresh token in RefreshHeader.
type HeaderCarrier struct {
	in  http.Header
	out http.Header
}

// NewHeaderCarrier reads tokens from in and writes them to out.
func NewHeaderCarrier(in, out http.Header) *HeaderCarrier {
	return &HeaderCarrier{in: in, out: out}
}

var _ CredentialCarrier = (*HeaderCarrier)(nil)

func (c *HeaderCarrier) Attach(access, refresh string) {
	if c.out == nil {
		return
	}
	c.out.Set(router.HeaderAuthorization, authScheme+" "+access)
	if refresh != "" {
		c.out.Set(RefreshHeader, refresh)
	}
}

func (c *HeaderCarrier) AccessToken() (string, bool) {
	if c.in == nil {
		return "", false
	}
	return bearerToken(c.in.Get(router.HeaderAuthorization))
}

func (c *HeaderCarrier) RefreshToken() (string, bool) {
	if c.in == nil {
		return "", false
	}
	v := c.in.Get(RefreshHeader)
	return v, v != ""
}

func (c *HeaderCarrier) Clear() {
	if c.out == nil {
		return
	}
	c.out.Del(router.HeaderAuthorization)
	c.out.Del(RefreshHeader)
}

func bearerToken(value string) (string, bool) {
	prefix := authScheme + " "
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(value[len(prefix):])
	return token, token != ""
}

// MemoryCarrier holds the pair in memory, for tests and in-process callers.
type MemoryCarrier struct {
	access  string
	refresh string
}

var _ CredentialCarrier = (*MemoryCarrier)(nil)

func (c *MemoryCarrier) Attach(access, refresh string) {
	c.access = access
	if refresh != "" {
		c.refresh = refresh
	}
}

func (c *MemoryCarrier) AccessToken() (string, bool) {
	return c.access, c.access != ""
}

func (c *MemoryCarrier) RefreshToken() (string, bool) {
	return c.refresh, c.refresh != ""
}

func (c *MemoryCarrier) Clear() {
	c.access = ""
	c.refresh = ""
}
