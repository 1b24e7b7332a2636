package engines

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/speechdemo/internal/tts"
)

// New creates the engine selected in config.
func New(config tts.Config, secrets tts.Secrets, logger *log.Logger) (tts.TTSEngine, error) {
	engineType, err := tts.ValidateEngineSelection("", config)
	if err != nil {
		return nil, err
	}

	switch engineType {
	case tts.EngineMock:
		return NewMockEngine(config.Mock), nil
	case tts.EngineOpenAI:
		engine, err := NewOpenAIEngine(OpenAIConfig{
			APIKey:            secrets.APIKey,
			BaseURL:           secrets.BaseURL,
			Model:             config.Model,
			Format:            config.Format,
			RequestsPerMinute: config.RequestsPerMinute,
			CacheSize:         config.CacheSize,
			Logger:            logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai engine: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("%w: %s", tts.ErrInvalidEngine, engineType)
	}
}
