package credential

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type ActivateUserMessage struct {
	Token string `json:"activation_token"`
	Code  string `json:"activation_code"`
}

func (m ActivateUserMessage) Type() string { return "credential.activate" }

// Validate will run validation rules.
func (m ActivateUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Token, validation.Required),
		validation.Field(&m.Code, validation.Required, validation.Length(4, 4), is.Digit),
	)
}

// ActivateUserHandler redeems an activation ticket and persists the new
// identity. Uniqueness is re-checked before the write because a second
// registration for the same email may have completed activation first.
type ActivateUserHandler struct {
	store      UserStore
	activation *ActivationService
	logger     Logger
}

// NewActivateUserHandler wires the activation orchestrator.
func NewActivateUserHandler(store UserStore, activation *ActivationService) *ActivateUserHandler {
	return &ActivateUserHandler{
		store:      store,
		activation: activation,
		logger:     defLogger{},
	}
}

// WithLogger overrides the handler logger.
func (h *ActivateUserHandler) WithLogger(logger Logger) *ActivateUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Execute validates the ticket + code and returns the created identity.
func (h *ActivateUserHandler) Execute(ctx context.Context, msg ActivateUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *ActivateUserHandler) execute(ctx context.Context, msg ActivateUserMessage) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, ErrInvalidInput.Category, ErrInvalidInput.Message).
			WithTextCode(textCodeInvalidInput).
			WithCode(goerrors.CodeBadRequest)
	}

	pending, err := h.activation.Redeem(msg.Token, msg.Code)
	if err != nil {
		return nil, err
	}

	if err := ensureUniqueIdentity(ctx, h.store, pending.Email, pending.Phone); err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Name:         pending.Name,
		Email:        pending.Email,
		Phone:        pending.Phone,
		PasswordHash: pending.PasswordHash,
	}

	created, err := h.store.Create(ctx, user)
	if err != nil {
		// The check above raced a concurrent activation: the write-time
		// constraint wins, and we report it as an ordinary duplicate.
		if IsConstraintViolationError(err) {
			return nil, h.duplicateFromConflict(ctx, pending.Email)
		}
		return nil, goerrors.Wrap(err, ErrDependencyUnavailable.Category, "could not create user").
			WithTextCode(textCodeDependencyUnavailable).
			WithCode(goerrors.CodeInternal)
	}

	h.logger.Info("identity activated", "email", created.Email, "id", created.ID.String())

	return created, nil
}

func (h *ActivateUserHandler) duplicateFromConflict(ctx context.Context, email string) error {
	_, err := h.store.FindByEmail(ctx, email)
	if err == nil {
		return ErrDuplicateEmail
	}
	// Only a confirmed email miss pins the conflict on the phone number.
	if goerrors.IsNotFound(err) {
		return ErrDuplicatePhone
	}
	return goerrors.Wrap(err, ErrDependencyUnavailable.Category, "user store lookup failed").
		WithTextCode(textCodeDependencyUnavailable).
		WithCode(goerrors.CodeInternal)
}
