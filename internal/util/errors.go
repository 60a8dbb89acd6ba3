package util

import "errors"

var (
	// Generation failures.
	ErrModelUnavailable = errors.New("generative model is not configured")
	ErrSchemaViolation  = errors.New("model response does not match the requested schema")
	ErrEmptyQuiz        = errors.New("model returned an empty question set")

	// Video grading failures.
	ErrVideoProcessing  = errors.New("uploaded video failed backend processing")
	ErrVideoPollTimeout = errors.New("timed out waiting for video processing")
	ErrVideoTooLong     = errors.New("video exceeds the maximum allowed duration")

	// Quiz lifecycle.
	ErrQuizSessionExpired = errors.New("quiz session expired or not found")
	ErrResultNotFound     = errors.New("result not found")

	// Auth.
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
