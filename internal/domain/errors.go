package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrStepNotFound       = errors.New("step not found")
	ErrBreakdownExists    = errors.New("breakdown already generated")
	ErrUpstream           = errors.New("upstream model error")
	ErrUpstreamEmpty      = errors.New("upstream returned empty response")
	ErrUpstreamTimeout    = errors.New("upstream model timed out")
	ErrMalformedBreakdown = errors.New("malformed breakdown")
	ErrPersistence        = errors.New("persistence failure")
)
