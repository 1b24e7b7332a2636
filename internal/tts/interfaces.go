package tts

import (
	"context"
)

// TTSEngine defines the contract for text-to-speech engines.
// Implementations include the hosted OpenAI endpoint and an offline mock.
// An engine satisfies gateway.Capability through Synthesize.
type TTSEngine interface {
	// Synthesize converts text to audio with the given voice.
	// It makes a single attempt and returns the payload untouched along with
	// its MIME type.
	Synthesize(ctx context.Context, text, voice string) ([]byte, string, error)

	// GetInfo returns engine capabilities and configuration.
	GetInfo() EngineInfo

	// Validate checks if the engine is properly configured.
	Validate() error

	// Close releases any resources held by the engine.
	Close() error
}

// EngineInfo describes engine capabilities and configuration.
type EngineInfo struct {
	Name        string // Engine name (e.g., "openai", "mock")
	Model       string // Remote model identifier
	Format      Format // Audio format produced
	MaxTextSize int    // Maximum text size in characters
	IsOnline    bool   // Whether the engine requires internet
}
