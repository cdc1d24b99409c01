package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/service/auth"
	"github.com/phrazzld/catalog-api/internal/store"
)

// Messages shared between handlers, middleware and tests.
const (
	MsgStoreNameExists  = "A store with that name already exists."
	MsgUsernameExists   = "A user with that username already exists."
	MsgTagInUse         = "Could not delete tag. Make sure tag is not associated with any items, then try again."
	MsgInvalidCreds     = "Invalid credentials."
	MsgAdminRequired    = "Admin privilege required."
	MsgFreshRequired    = "Fresh token required"
	MsgMissingToken     = "Authorization header required"
	MsgInvalidToken     = "Invalid token"
	MsgExpiredToken     = "Token has expired"
	MsgRevokedToken     = "Token has been revoked"
	MsgInvalidRequest   = "Invalid request format"
	MsgTooManyRequests  = "Too many requests"
	MsgUnexpectedError  = "An unexpected error occurred"
	MsgValidationFailed = "Validation error"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrFreshTokenRequired):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrAdminRequired):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrUsernameExists):
		return http.StatusConflict

	// Store names and the tag guard answer 400, as clients of this API expect.
	case errors.Is(err, store.ErrStoreNameExists),
		errors.Is(err, store.ErrTagInUse),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedError
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgInvalidCreds
	case errors.Is(err, auth.ErrMissingToken):
		return MsgMissingToken
	case errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return MsgExpiredToken
	case errors.Is(err, auth.ErrTokenRevoked):
		return MsgRevokedToken
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return MsgInvalidToken
	case errors.Is(err, auth.ErrFreshTokenRequired):
		return MsgFreshRequired
	case errors.Is(err, auth.ErrAdminRequired):
		return MsgAdminRequired

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrStoreNotFound):
		return "Store not found"
	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrStoreNameExists):
		return MsgStoreNameExists
	case errors.Is(err, store.ErrUsernameExists):
		return MsgUsernameExists
	case errors.Is(err, store.ErrTagInUse):
		return MsgTagInUse

	case errors.Is(err, shared.ErrEmptyBody):
		return MsgInvalidRequest
	case errors.Is(err, domain.ErrValidation):
		return domainValidationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return MsgUnexpectedError
	}
}

// domainValidationMessage returns the text of the domain sentinel wrapped by
// err. Sentinel texts are written for clients; the wrapping context is not.
func domainValidationMessage(err error) string {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)
	}

	for _, sentinel := range []error{
		domain.ErrEmptyName,
		domain.ErrNameTooLong,
		domain.ErrNegativePrice,
		domain.ErrPriceTooLarge,
		domain.ErrMissingStoreID,
		domain.ErrEmptyUsername,
		domain.ErrUsernameTooLong,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooLong,
	} {
		if errors.Is(err, sentinel) {
			msg := strings.TrimPrefix(sentinel.Error(), domain.ErrValidation.Error()+": ")
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return MsgValidationFailed
}

// SanitizeValidationError turns validator errors into "Invalid <field>: <reason>".
func SanitizeValidationError(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return MsgValidationFailed
	}
	fe := vErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too long"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status code and safe message for err. A
// non-empty fallback replaces the generic message of unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
