package service

import (
	"context"
	"errors"
)

// Mailer sends a single email message. Implementations report whether a
// failure is permanent by wrapping it in PermanentSendError.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error
	IsEnabled() bool
}

// PermanentSendError marks a send failure that retrying cannot fix,
// such as a rejected recipient address.
type PermanentSendError struct {
	Err error
}

func (e *PermanentSendError) Error() string {
	return e.Err.Error()
}

func (e *PermanentSendError) Unwrap() error {
	return e.Err
}

// IsPermanentSendError reports whether err is a permanent delivery failure.
func IsPermanentSendError(err error) bool {
	var perm *PermanentSendError
	return errors.As(err, &perm)
}
