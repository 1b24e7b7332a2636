package engines

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/speechdemo/internal/tts"
)

// MockEngine implements the TTSEngine interface without any network access.
// It returns silent PCM sized to the estimated speaking time and can be told
// to fail, which makes demo mode reachable without an API key.
type MockEngine struct {
	delay time.Duration // Simulated processing delay

	// Control for testing
	mu           sync.Mutex
	failureError error
	callCount    int
}

// NewMockEngine creates a new mock TTS engine.
func NewMockEngine(config tts.MockConfig) *MockEngine {
	e := &MockEngine{delay: config.Delay}
	if config.FailWith != "" {
		e.failureError = errors.New(config.FailWith)
	}
	return e
}

// Synthesize simulates audio generation.
func (e *MockEngine) Synthesize(ctx context.Context, text, _ string) ([]byte, string, error) {
	e.mu.Lock()
	e.callCount++
	failure := e.failureError
	e.mu.Unlock()

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}

	if failure != nil {
		return nil, "", failure
	}

	// Generate mock audio (silence), 16-bit mono
	duration := estimateDuration(text)
	samples := int(duration.Seconds() * float64(tts.PCMSampleRate))
	return make([]byte, samples*2), tts.FormatPCM.MIMEType(), nil
}

// estimateDuration assumes ~150 words per minute, ~5 characters per word.
func estimateDuration(text string) time.Duration {
	chars := len([]rune(text))
	if chars == 0 {
		return 0
	}
	words := float64(chars) / 5.0
	return time.Duration(words / 150.0 * float64(time.Minute))
}

// GetInfo returns engine information.
func (e *MockEngine) GetInfo() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        string(tts.EngineMock),
		Model:       "mock",
		Format:      tts.FormatPCM,
		MaxTextSize: tts.MaxTextLength,
		IsOnline:    false,
	}
}

// Validate always succeeds.
func (e *MockEngine) Validate() error {
	return nil
}

// Close is a no-op.
func (e *MockEngine) Close() error {
	return nil
}

// Test control methods

// SetFailure configures the engine to fail with the given error.
func (e *MockEngine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failureError = err
}

// ClearFailure resets the engine to normal operation.
func (e *MockEngine) ClearFailure() {
	e.SetFailure(nil)
}

// CallCount returns how many times Synthesize was called.
func (e *MockEngine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}
