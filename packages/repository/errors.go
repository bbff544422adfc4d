package repository

import "errors"

// Error taxonomy for the GitHub client. All are terminal for the
// current run; nothing here is retried automatically.
var (
	ErrInvalidRepositoryURL   = errors.New("invalid repository URL")
	ErrRepositoryNotFound     = errors.New("repository not found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrRateLimited            = errors.New("rate limit exceeded")
	ErrFileTooLarge           = errors.New("file too large")
	ErrDecodeError            = errors.New("could not decode file content")
)
