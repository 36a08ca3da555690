// Package businessflow contains the core business logic and use cases for the application
package businessflow

import (
	"errors"
)

// Business flow error constants
var (
	// Counter-related errors
	ErrCounterUnavailable = errors.New("counter is unavailable")
	ErrEnqueueFailed      = errors.New("failed to enqueue increment task")

	// Testimonial-related errors
	ErrTestimonialNotFound = errors.New("testimonial not found")
	ErrTestimonialInvalid  = errors.New("testimonial is invalid")
	ErrCommentInvalid      = errors.New("comment is invalid")
)

// IsEnqueueFailed reports whether err means the increment task could not be queued
func IsEnqueueFailed(err error) bool {
	return errors.Is(err, ErrEnqueueFailed)
}

// IsCounterUnavailable reports whether err means the counter store failed
func IsCounterUnavailable(err error) bool {
	return errors.Is(err, ErrCounterUnavailable)
}

// IsTestimonialNotFound reports whether err means the testimonial does not exist
func IsTestimonialNotFound(err error) bool {
	return errors.Is(err, ErrTestimonialNotFound)
}
