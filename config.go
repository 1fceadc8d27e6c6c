package credential

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultActivationTTL is how long an activation ticket stays redeemable.
	DefaultActivationTTL = 5 * time.Minute
	// DefaultAccessTTL is the access token lifetime.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token lifetime.
	DefaultRefreshTTL = 7 * 24 * time.Hour
	// DefaultHashCost is the bcrypt work factor.
	DefaultHashCost = 10

	minSecretLength = 16
)

// Config holds the engine's secrets and lifetimes. It is passed explicitly
// into each component at construction; business logic never reads ambient
// environment state.
type Config struct {
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	HashCost         int
	Issuer           string
}

// Validate will run validation rules. Each secret must be set and distinct
// enough to matter; lifetimes must be positive with refresh outliving access.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ActivationSecret, validation.Required, validation.Length(minSecretLength, 512)),
		validation.Field(&c.AccessSecret, validation.Required, validation.Length(minSecretLength, 512)),
		validation.Field(&c.RefreshSecret, validation.Required, validation.Length(minSecretLength, 512)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid credential configuration").
			WithTextCode(textCodeInvalidInput)
	}

	if c.AccessSecret == c.RefreshSecret {
		return goerrors.New("access and refresh secrets must differ", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidInput)
	}

	if c.ActivationTTL < 0 || c.AccessTTL < 0 || c.RefreshTTL < 0 {
		return goerrors.New("token lifetimes must be non-negative", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidInput)
	}

	if c.AccessTTL != 0 && c.RefreshTTL != 0 && c.RefreshTTL <= c.AccessTTL {
		return goerrors.New("refresh lifetime must exceed access lifetime", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidInput)
	}

	return nil
}

// WithDefaults fills zero-valued lifetimes and hash cost.
func (c Config) WithDefaults() Config {
	if c.ActivationTTL == 0 {
		c.ActivationTTL = DefaultActivationTTL
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = DefaultAccessTTL
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = DefaultRefreshTTL
	}
	if c.HashCost == 0 {
		c.HashCost = DefaultHashCost
	}
	return c
}

// LoadConfig reads configuration from environment variables, applying
// defaults for the optional knobs. Secrets have no defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		ActivationSecret: os.Getenv("ACTIVATION_SECRET"),
		AccessSecret:     os.Getenv("ACCESS_SECRET"),
		RefreshSecret:    os.Getenv("REFRESH_SECRET"),
		Issuer:           os.Getenv("TOKEN_ISSUER"),
	}

	var err error
	if cfg.ActivationTTL, err = envDuration("ACTIVATION_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.AccessTTL, err = envDuration("ACCESS_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTTL, err = envDuration("REFRESH_TTL"); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("HASH_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid HASH_COST").
				WithTextCode(textCodeInvalidInput)
		}
		cfg.HashCost = cost
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid "+key).
			WithTextCode(textCodeInvalidInput)
	}
	return d, nil
}
