package credential

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

func (m RegisterUserMessage) Type() string { return "credential.register" }

// Validate will run validation rules.
func (m RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Phone, validation.Required, validation.Length(7, 15), is.Digit),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 100)),
	)
}

// RegisterUserHandler coordinates the first registration phase: uniqueness
// checks, password hashing, activation ticket creation, and code dispatch.
// Nothing is persisted; the returned activation token carries the whole
// pending registration.
type RegisterUserHandler struct {
	store      UserStore
	hasher     PasswordHasher
	activation *ActivationService
	notifier   Notifier
	logger     Logger
}

// NewRegisterUserHandler wires the registration orchestrator.
func NewRegisterUserHandler(store UserStore, hasher PasswordHasher, activation *ActivationService, notifier Notifier) *RegisterUserHandler {
	return &RegisterUserHandler{
		store:      store,
		hasher:     hasher,
		activation: activation,
		notifier:   notifier,
		logger:     defLogger{},
	}
}

// WithLogger overrides the handler logger.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Execute returns the activation token. The 4-digit code travels only
// through the Notifier, never back to the caller.
func (h *RegisterUserHandler) Execute(ctx context.Context, msg RegisterUserMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, msg RegisterUserMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return "", goerrors.Wrap(err, ErrInvalidInput.Category, ErrInvalidInput.Message).
			WithTextCode(textCodeInvalidInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := ensureUniqueIdentity(ctx, h.store, msg.Email, msg.Phone); err != nil {
		return "", err
	}

	hash, err := h.hasher.Hash(msg.Password)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	pending := PendingUser{
		Name:         msg.Name,
		Email:        msg.Email,
		PasswordHash: hash,
		Phone:        msg.Phone,
	}

	token, code, err := h.activation.Create(pending)
	if err != nil {
		return "", err
	}

	// Without the delivered code the user can never activate: abort.
	if err := h.notifier.SendActivationCode(ctx, msg.Email, msg.Name, code); err != nil {
		h.logger.Error("activation code dispatch failed", "email", msg.Email, "error", err)
		return "", goerrors.Wrap(err, ErrDependencyUnavailable.Category, "failed to deliver activation code").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	h.logger.Info("registration pending activation", "email", msg.Email)

	return token, nil
}

// ensureUniqueIdentity rejects emails and phone numbers already owned by a
// persisted identity. This is a check-then-act read: the write-time
// constraint in the store remains the final arbiter.
func ensureUniqueIdentity(ctx context.Context, store UserStore, email, phone string) error {
	if _, err := store.FindByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store lookup failed").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	if _, err := store.FindByPhone(ctx, phone); err == nil {
		return ErrDuplicatePhone
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store lookup failed").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	return nil
}
