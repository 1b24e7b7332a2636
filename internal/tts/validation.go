package tts

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateEngineSelection resolves the engine name.
// It checks the CLI argument first, then config.
func ValidateEngineSelection(cliArg string, config Config) (EngineType, error) {
	// 1. CLI argument takes precedence
	engineType := cliArg

	// 2. Use config if no CLI arg
	if engineType == "" {
		engineType = string(config.Engine)
	}

	if engineType == "" {
		return EngineNone, fmt.Errorf("%w\n\nPlease specify an engine:\n  speechdemo --engine openai    # hosted synthesis (needs OPENAI_API_KEY)\n  speechdemo --engine mock      # offline, no audio", ErrNoEngineConfigured)
	}

	// 3. Validate engine type (normalize aliases)
	switch strings.ToLower(engineType) {
	case "openai", "ai-sdk":
		return EngineOpenAI, nil
	case "mock", "demo":
		return EngineMock, nil
	default:
		return EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - openai (hosted)\n  - mock (offline)", ErrInvalidEngine, engineType)
	}
}

// Validate checks configuration values.
func (c Config) Validate() error {
	if _, err := ValidateEngineSelection("", c); err != nil {
		return err
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalidConfig)
	}
	if !c.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.RequestsPerMinute < 0 || c.RequestsPerMinute > 10000 {
		return fmt.Errorf("%w: requests_per_minute must be between 0 and 10000, got %d", ErrInvalidConfig, c.RequestsPerMinute)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	for _, t := range c.DegradeTokens {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: degrade_tokens must not contain empty entries", ErrInvalidConfig)
		}
	}
	return nil
}

// ValidateText checks a synthesis input before it reaches the gateway.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return NewTTSError(ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", n, MaxTextLength), nil).
			WithContext("length", n)
	}
	return nil
}
