package api

import (
	"fmt"
)

// HTTPError provides a way to pass more meaningful information regarding http errors without breaking interfaces.
type HTTPError struct {
	Err    error
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s, status code: %d", e.Err, e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// AuthError signals a rejected bearer token. Callers may attempt a token refresh and retry.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
