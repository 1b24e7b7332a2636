package tts

import (
	"errors"
	"fmt"
)

// Common TTS errors
var (
	// ErrNoEngineConfigured indicates no TTS engine has been selected
	ErrNoEngineConfigured = errors.New("no TTS engine configured - specify --engine openai or --engine mock")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid TTS engine specified")

	// ErrInvalidVoice indicates the voice is not one of the supported voices
	ErrInvalidVoice = errors.New("invalid voice")

	// ErrInvalidFormat indicates an unsupported response format
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrEmptyText indicates there is nothing to synthesize
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrMissingAPIKey indicates the remote engine has no credentials
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

	// ErrSynthesisFailed indicates synthesis operation failed
	ErrSynthesisFailed = errors.New("text synthesis failed")

	// ErrInvalidConfig indicates a configuration value is out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TTSError represents a TTS-specific error with additional context
type TTSError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TTSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TTSError) Unwrap() error {
	return e.Cause
}

// ErrorCode identifies specific error types
type ErrorCode string

const (
	// Engine errors
	ErrorCodeEngineFailure ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineTimeout ErrorCode = "ENGINE_TIMEOUT"
	ErrorCodeRateLimited   ErrorCode = "RATE_LIMITED"

	// Input errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorCodeTextTooLong  ErrorCode = "TEXT_TOO_LONG"
)

// NewTTSError creates a new TTS error with context
func NewTTSError(code ErrorCode, message string, cause error) *TTSError {
	return &TTSError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	e.Context[key] = value
	return e
}
