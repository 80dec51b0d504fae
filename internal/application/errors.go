package application

// ValidationError marks missing or malformed caller input. The message
// is safe to show to end users and is never retried server-side.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(msg string) error { return &ValidationError{Msg: msg} }
