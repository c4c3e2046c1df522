package ingestion

import "errors"

var (
	// ErrGraphRequired is returned when a graph is not provided.
	ErrGraphRequired = errors.New("graph required")

	// ErrFeatureRepositoryRequired is returned when embeddings are enabled
	// without somewhere to store them.
	ErrFeatureRepositoryRequired = errors.New("feature repository required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNotRegular is returned when a path is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
)

// permanentError marks an error that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Backoff.Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
