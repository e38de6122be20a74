package service

import "errors"

// Common service errors
var (
	// ErrUserContextRequired is returned when an operation needs an authenticated user
	ErrUserContextRequired = errors.New("authenticated user required")

	// ErrUniversityNotFound is returned when a university id is unknown
	ErrUniversityNotFound = errors.New("university not found")

	// ErrSubjectNotFound is returned when a subject id is unknown
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrUnsupportedImage is returned for uploads that are not a supported image type
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge is returned when an upload exceeds the configured size
	ErrImageTooLarge = errors.New("image too large")
)
