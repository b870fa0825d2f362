package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Object storage & delivery errors
var (
	ErrStorageUpload  = errors.New("object upload failed")
	ErrStorageRemove  = errors.New("object removal failed")
	ErrDeliveryFailed = errors.New("notification delivery failed")
	ErrConfigMissing  = errors.New("configuration missing")
)

// NewStorageError reports a failure talking to the object store
func NewStorageError(sentinel error, path string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        sentinel,
		Details:    fmt.Sprintf("object %s", path),
		Cause:      cause,
	}
}

func NewDeliveryError(channel string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrDeliveryFailed,
		Details:    fmt.Sprintf("Could not deliver via %s", channel),
		Cause:      cause,
	}
}

func NewConfigMissingError(key string) error {
	return fmt.Errorf("%s: %w", key, ErrConfigMissing)
}
