package types

import "errors"

var (
	// ErrInvalidMessage is returned when a message or conversation is malformed
	ErrInvalidMessage = errors.New("invalid message")

	// ErrToolNotFound is returned when the model calls a tool the agent does not offer
	ErrToolNotFound = errors.New("tool not found")

	// ErrMaxIterationsReached is returned when max iterations are reached
	ErrMaxIterationsReached = errors.New("max iterations reached")

	// ErrEmptyResponse is returned when the provider returns an empty response
	ErrEmptyResponse = errors.New("empty response from provider")
)
