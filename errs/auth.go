package errs

import (
	"errors"
	"net/http"
)

// Authentication Errors
var (
	ErrMissingToken       = errors.New("missing access token")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMagicLinkInvalid   = errors.New("magic link is invalid")
	ErrMagicLinkUsed      = errors.New("magic link already used")
	ErrMagicLinkExpired   = errors.New("magic link expired")
)

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Access token is invalid or expired",
		Field:      "authorization",
		Cause:      cause,
	}
}

func NewInvalidCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidCredentials,
	}
}

// NewMagicLinkError wraps one of the magic link sentinels
func NewMagicLinkError(sentinel error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        sentinel,
		Field:      "token",
	}
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrMissingToken)
}
