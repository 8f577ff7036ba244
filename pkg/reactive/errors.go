package reactive

import "errors"

// ErrNilTarget is wrapped by the panic value when Reactive is given a nil map.
// Supplying a valid record is a precondition of Reactive; it is not recovered.
var ErrNilTarget = errors.New("reactive: nil target")

// ErrInvalidSource is returned by Watch when the source is not a func(),
// a func() any, or a *Ref.
var ErrInvalidSource = errors.New("reactive: invalid watch source")

// ErrMissingCallback is returned by Watch when a *Ref source has no callback.
var ErrMissingCallback = errors.New("reactive: watch callback required")

// TargetError is the panic value raised by Reactive for a nil record.
type TargetError struct{}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return "[COMPOSE E101] reactive: cannot wrap a nil record"
}

// Unwrap returns ErrNilTarget for errors.Is support.
func (e *TargetError) Unwrap() error {
	return ErrNilTarget
}
