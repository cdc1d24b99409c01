package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates an access token was used where a refresh token is required, or vice versa
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is malformed or its signature doesn't match
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrTokenRevoked indicates the token was logged out or already exchanged
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrInvalidCredentials is returned for an unknown username or a wrong password alike
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFreshTokenRequired indicates the operation needs a token issued by login
	ErrFreshTokenRequired = errors.New("fresh token required")

	// ErrAdminRequired indicates the operation needs the is_admin claim
	ErrAdminRequired = errors.New("admin privilege required")
)
