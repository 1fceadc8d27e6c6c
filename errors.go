package credential

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidInput          = "INVALID_INPUT"
	textCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	textCodeDuplicatePhone        = "DUPLICATE_PHONE"
	textCodeTokenExpired          = "TOKEN_EXPIRED"
	textCodeTokenInvalid          = "TOKEN_INVALID"
	textCodeCodeMismatch          = "ACTIVATION_CODE_MISMATCH"
	textCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	textCodeUnauthenticated       = "UNAUTHENTICATED"
	textCodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	textCodeConstraintViolation   = "CONSTRAINT_VIOLATION"
)

// ErrInvalidInput is returned when required registration fields are missing
// or malformed.
var ErrInvalidInput = goerrors.New("invalid input", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidInput).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateEmail is returned when an identity with the email already exists.
var ErrDuplicateEmail = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrDuplicatePhone is returned when an identity with the phone number
// already exists.
var ErrDuplicatePhone = goerrors.New("phone number already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicatePhone).
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned when a signed token's TTL has elapsed.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid is returned for malformed or tampered tokens. Callers must
// be able to branch on expired vs invalid, so the two never share a text code.
var ErrTokenInvalid = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrCodeMismatch is returned when an activation code does not match the one
// embedded in the ticket.
var ErrCodeMismatch = goerrors.New("activation code mismatch", goerrors.CategoryAuth).
	WithTextCode(textCodeCodeMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is the uniform login failure. It deliberately does
// not distinguish unknown email from wrong password.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is the uniform guard failure. The internal cause
// (expired vs tampered) is logged, never surfaced.
var ErrUnauthenticated = goerrors.New("unauthenticated", goerrors.CategoryAuth).
	WithTextCode(textCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrDependencyUnavailable is returned when the user store or notifier fails.
var ErrDependencyUnavailable = goerrors.New("dependency unavailable", goerrors.CategoryOperation).
	WithTextCode(textCodeDependencyUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrConstraintViolation is returned by UserStore.Create on a write-time
// uniqueness conflict. Orchestrators translate it back into
// ErrDuplicateEmail/ErrDuplicatePhone.
var ErrConstraintViolation = goerrors.New("uniqueness constraint violation", goerrors.CategoryConflict).
	WithTextCode(textCodeConstraintViolation).
	WithCode(goerrors.CodeConflict)

// ErrIdentityNotFound is the error we return for non found identities.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned when a password does not match
// its stored digest.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE").
	WithCode(goerrors.CodeBadRequest)

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsTokenExpiredError will check for expired tokens.
func IsTokenExpiredError(err error) bool {
	if hasTextCode(err, textCodeTokenExpired) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "token is expired")
}

// IsTokenInvalidError will check for malformed or tampered tokens.
func IsTokenInvalidError(err error) bool {
	if hasTextCode(err, textCodeTokenInvalid) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "token is malformed")
}

// IsCodeMismatchError will check for activation code mismatches.
func IsCodeMismatchError(err error) bool {
	return hasTextCode(err, textCodeCodeMismatch)
}

// IsDuplicateEmailError will check for email uniqueness conflicts.
func IsDuplicateEmailError(err error) bool {
	return hasTextCode(err, textCodeDuplicateEmail)
}

// IsDuplicatePhoneError will check for phone uniqueness conflicts.
func IsDuplicatePhoneError(err error) bool {
	return hasTextCode(err, textCodeDuplicatePhone)
}

// IsInvalidInputError will check for rejected registration input.
func IsInvalidInputError(err error) bool {
	return hasTextCode(err, textCodeInvalidInput)
}

// IsInvalidCredentialsError will check for the uniform login failure.
func IsInvalidCredentialsError(err error) bool {
	return hasTextCode(err, textCodeInvalidCredentials)
}

// IsUnauthenticatedError will check for guard rejections.
func IsUnauthenticatedError(err error) bool {
	return hasTextCode(err, textCodeUnauthenticated)
}

// IsConstraintViolationError will check for write-time uniqueness conflicts.
func IsConstraintViolationError(err error) bool {
	return hasTextCode(err, textCodeConstraintViolation)
}

// IsDependencyUnavailableError will check for store/notifier failures.
func IsDependencyUnavailableError(err error) bool {
	return hasTextCode(err, textCodeDependencyUnavailable)
}
