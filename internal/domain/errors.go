package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session capacity reached")
	ErrActionInFlight  = errors.New("another action is already in progress")
	ErrNoActiveImage   = errors.New("no active image")
	ErrInvalidIndex    = errors.New("index out of range")

	ErrImageUnreadable = errors.New("failed to load image")
	ErrFetchFailed     = errors.New("could not retrieve remote image")

	ErrClassifyUnavailable = errors.New("intent service unavailable")
	ErrSearchUnavailable   = errors.New("product search unavailable")
	ErrGenerateUnavailable = errors.New("image generation unavailable")

	ErrNoProducts      = errors.New("no products found")
	ErrNoImageReturned = errors.New("model did not return an image")

	ErrExampleNotFound = errors.New("example not found")
)
