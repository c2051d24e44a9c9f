package errors

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("no valid session")
	ErrNotConnected       = errors.New("provider not connected")
	ErrAuth               = errors.New("provider rejected token")
	ErrProvider           = errors.New("provider request failed")
	ErrBackendUnavailable = errors.New("rate limit backend unavailable")
	ErrQuotaExceeded      = errors.New("plan quota exceeded")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Error struct {
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
		Code:    "INTERNAL_ERROR",
	}
}
