package services

import "errors"

// Sentinel errors returned by services. Handlers map them to HTTP
// statuses with errors.Is.
var (
	// ErrValidation means the caller's input is incomplete or invalid.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized means the record exists but the caller is not its owner.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUpload means the external image host rejected or failed the upload.
	ErrUpload = errors.New("upload failed")
)
