package tts

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateEngineSelection(t *testing.T) {
	tests := []struct {
		name        string
		cliArg      string
		config      Config
		expected    EngineType
		expectError error
	}{
		{
			name:     "CLI arg openai",
			cliArg:   "openai",
			expected: EngineOpenAI,
		},
		{
			name:     "CLI arg alias",
			cliArg:   "ai-sdk",
			expected: EngineOpenAI,
		},
		{
			name:     "CLI overrides config",
			cliArg:   "mock",
			config:   Config{Engine: EngineOpenAI},
			expected: EngineMock,
		},
		{
			name:     "config only",
			config:   Config{Engine: EngineMock},
			expected: EngineMock,
		},
		{
			name:        "nothing selected",
			expected:    EngineNone,
			expectError: ErrNoEngineConfigured,
		},
		{
			name:        "unknown engine",
			cliArg:      "piper",
			expected:    EngineNone,
			expectError: ErrInvalidEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateEngineSelection(tt.cliArg, tt.config)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got engine %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad format", func(c *Config) { c.Format = "ogg" }, ErrInvalidFormat},
		{"empty model", func(c *Config) { c.Model = "" }, ErrInvalidConfig},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidConfig},
		{"negative rate", func(c *Config) { c.RequestsPerMinute = -1 }, ErrInvalidConfig},
		{"negative cache", func(c *Config) { c.CacheSize = -5 }, ErrInvalidConfig},
		{"blank token", func(c *Config) { c.DegradeTokens = []string{"quota", " "} }, ErrInvalidConfig},
		{"bad engine", func(c *Config) { c.Engine = "espeak" }, ErrInvalidEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout != 60*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Timeout)
	}
	if strings.Join(cfg.DegradeTokens, ",") != "quota,billing" {
		t.Errorf("unexpected degrade tokens %v", cfg.DegradeTokens)
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("hello"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateText("   \n"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}

	err := ValidateText(strings.Repeat("a", MaxTextLength+1))
	var ttsErr *TTSError
	if !errors.As(err, &ttsErr) {
		t.Fatalf("expected TTSError, got %v", err)
	}
	if ttsErr.Code != ErrorCodeTextTooLong {
		t.Errorf("unexpected code %s", ttsErr.Code)
	}
}

func TestFormatMIMEType(t *testing.T) {
	tests := map[Format]string{
		FormatMP3: "audio/mpeg",
		FormatPCM: "audio/pcm",
		FormatWAV: "audio/wav",
		"ogg":     "",
	}
	for format, want := range tests {
		if got := format.MIMEType(); got != want {
			t.Errorf("%s: got %q, want %q", format, got, want)
		}
	}
}

func TestValidateVoice(t *testing.T) {
	for _, id := range VoiceIDs() {
		if err := ValidateVoice(id); err != nil {
			t.Errorf("%s should be valid: %v", id, err)
		}
	}

	err := ValidateVoice("nv")
	if !errors.Is(err, ErrInvalidVoice) {
		t.Fatalf("expected ErrInvalidVoice, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "nova"`) {
		t.Errorf("expected suggestion in %q", err.Error())
	}

	err = ValidateVoice("zzz")
	if !errors.Is(err, ErrInvalidVoice) || !strings.Contains(err.Error(), "supported") {
		t.Errorf("expected supported list, got %v", err)
	}
}

func TestSuggestVoice(t *testing.T) {
	if got := SuggestVoice("shim"); got != "shimmer" {
		t.Errorf("got %q, want shimmer", got)
	}
	if got := SuggestVoice(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
