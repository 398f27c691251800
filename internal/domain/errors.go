package domain

import "errors"

// Protocol errors. Every one of these is fatal to a session.
var (
	ErrUnknownVerb         = errors.New("unknown verb")
	ErrMalformed           = errors.New("malformed message")
	ErrInvalidForEncoding  = errors.New("verb cannot be encoded by the client")
	ErrProtocolViolation   = errors.New("protocol violation")
	ErrUnrequestedResponse = errors.New("response matches no outstanding request")
)

// Transport errors.
var (
	ErrTransport        = errors.New("transport failure")
	ErrConnectionClosed = errors.New("connection closed")
	ErrFrameTimeout     = errors.New("timed out waiting for the rest of a frame")
	ErrInputClosed      = errors.New("input closed")
)

var (
	ErrUsernameTaken   = errors.New("username taken")
	ErrUsernameTooLong = errors.New("username is longer than 10 characters")
	ErrUsernameEmpty   = errors.New("username is empty")
	ErrWindowNotFound  = errors.New("no window for peer")
	ErrProfileNotFound = errors.New("profile not found")
)
