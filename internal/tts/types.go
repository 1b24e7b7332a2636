package tts

import (
	"time"
)

// EngineType represents the TTS engine selection
type EngineType string

const (
	// EngineOpenAI represents the hosted OpenAI speech endpoint
	EngineOpenAI EngineType = "openai"

	// EngineMock represents the offline mock engine
	EngineMock EngineType = "mock"

	// EngineNone represents no engine selected
	EngineNone EngineType = ""
)

// Format is the audio container requested from the remote engine.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm" // 24kHz, 16-bit signed little-endian, mono
)

// formatMIME maps response formats to the MIME type reported to callers.
var formatMIME = map[Format]string{
	FormatMP3:  "audio/mpeg",
	FormatOpus: "audio/ogg",
	FormatAAC:  "audio/aac",
	FormatFLAC: "audio/flac",
	FormatWAV:  "audio/wav",
	FormatPCM:  "audio/pcm",
}

// MIMEType returns the MIME type for the format, or "" if unknown.
func (f Format) MIMEType() string {
	return formatMIME[f]
}

// FormatForMIME returns the format reported with mimeType.
func FormatForMIME(mimeType string) (Format, bool) {
	for f, m := range formatMIME {
		if m == mimeType {
			return f, true
		}
	}
	return "", false
}

// Valid reports whether the format is supported.
func (f Format) Valid() bool {
	_, ok := formatMIME[f]
	return ok
}

const (
	// DefaultModel is the hosted speech model
	DefaultModel = "tts-1"

	// MaxTextLength is the longest input the hosted endpoint accepts
	MaxTextLength = 4096

	// PCMSampleRate is the sample rate of FormatPCM output
	PCMSampleRate = 24000
)

// Config represents TTS configuration
type Config struct {
	// Engine is the selected TTS engine
	Engine EngineType `mapstructure:"engine" yaml:"engine"`

	// Model is the remote speech model
	Model string `mapstructure:"model" yaml:"model"`

	// Format is the audio format requested from the engine
	Format Format `mapstructure:"format" yaml:"format"`

	// Timeout bounds a single synthesis request, imposed by the caller
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RequestsPerMinute is the outbound rate limit (0 disables it)
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`

	// CacheSize is the in-memory audio cache capacity in bytes (0 disables it)
	CacheSize int64 `mapstructure:"cache_size" yaml:"cache_size"`

	// DegradeTokens switch the gateway to demo mode when found in an error
	DegradeTokens []string `mapstructure:"degrade_tokens" yaml:"degrade_tokens"`

	// Mock contains mock engine configuration
	Mock MockConfig `mapstructure:"mock" yaml:"mock"`
}

// MockConfig contains mock engine configuration
type MockConfig struct {
	// Delay simulates remote latency
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`

	// FailWith makes every call fail with this message when non-empty,
	// e.g. "You exceeded your current quota" to exercise demo mode.
	FailWith string `mapstructure:"fail_with" yaml:"fail_with"`
}

// Secrets holds settings read only from the environment.
type Secrets struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

// DefaultConfig returns the default TTS configuration.
func DefaultConfig() Config {
	return Config{
		Engine:            EngineOpenAI,
		Model:             DefaultModel,
		Format:            FormatMP3,
		Timeout:           60 * time.Second,
		RequestsPerMinute: 50,
		CacheSize:         32 * 1024 * 1024,
		DegradeTokens:     []string{"quota", "billing"},
		Mock: MockConfig{
			Delay: 300 * time.Millisecond,
		},
	}
}
