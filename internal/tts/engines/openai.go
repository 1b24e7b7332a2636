package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/speechdemo/internal/cache"
	"github.com/dgnsrekt/speechdemo/internal/tts"
)

// OpenAIEngine implements the TTSEngine interface using the hosted
// /v1/audio/speech endpoint through the official SDK. Every call is a
// single HTTP attempt: SDK retries are disabled so quota errors reach the
// gateway on the first failure.
type OpenAIEngine struct {
	client *openai.Client
	apiKey string
	model  string
	format tts.Format

	// Rate limiting to stay under the account's request quota
	rateLimiter *rate.Limiter

	// Caching (optional)
	cache *cache.MemoryCache

	logger *log.Logger
}

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	// APIKey authenticates requests
	APIKey string

	// BaseURL overrides the API endpoint (optional)
	BaseURL string

	// Model defaults to "tts-1"
	Model string

	// Format defaults to mp3
	Format tts.Format

	// RequestsPerMinute limits outbound calls (0 disables limiting)
	RequestsPerMinute int

	// CacheSize in bytes for the in-memory audio cache (0 disables caching)
	CacheSize int64

	// HTTPClient is used for requests (optional)
	HTTPClient *http.Client

	// Logger (optional)
	Logger *log.Logger
}

// speechRequest is the body of a speech request.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// MarshalJSON makes the SDK send the struct as-is.
func (r speechRequest) MarshalJSON() ([]byte, error) {
	type plain speechRequest
	return json.Marshal(plain(r))
}

// NewOpenAIEngine creates a new OpenAI TTS engine.
func NewOpenAIEngine(config OpenAIConfig) (*OpenAIEngine, error) {
	if config.Model == "" {
		config.Model = tts.DefaultModel
	}
	if config.Format == "" {
		config.Format = tts.FormatMP3
	}
	if !config.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", tts.ErrInvalidFormat, config.Format)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(config.BaseURL, "/")+"/"))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	client := openai.NewClient(opts...)

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	var audioCache *cache.MemoryCache
	if config.CacheSize > 0 {
		audioCache = cache.NewMemoryCache(config.CacheSize)
	}

	return &OpenAIEngine{
		client:      &client,
		apiKey:      config.APIKey,
		model:       config.Model,
		format:      config.Format,
		rateLimiter: limiter,
		cache:       audioCache,
		logger:      config.Logger,
	}, nil
}

// Synthesize converts text to audio using the hosted speech endpoint.
func (e *OpenAIEngine) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	mimeType := e.format.MIMEType()

	// Check cache first if available
	var cacheKey string
	if e.cache != nil {
		cacheKey = cache.GenerateCacheKey(text, voice, e.model, string(e.format))
		if entry, ok := e.cache.Get(cacheKey); ok {
			e.logger.Debug("Speech cache hit", "voice", voice, "size", humanize.Bytes(uint64(len(entry.Audio))))
			return entry.Audio, entry.MIMEType, nil
		}
	}

	if text == "" {
		return nil, "", tts.ErrEmptyText
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, "", tts.NewTTSError(tts.ErrorCodeRateLimited, "rate limit wait cancelled", err)
		}
	}

	start := time.Now()
	req := speechRequest{
		Model:          e.model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: string(e.format),
	}

	var audio []byte
	err := e.client.Post(ctx, "audio/speech", req, &audio, option.WithHeader("Accept", mimeType))
	if err != nil {
		return nil, "", describeError(err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("%w: empty audio response", tts.ErrSynthesisFailed)
	}

	e.logger.Info("Speech synthesized",
		"model", e.model,
		"voice", voice,
		"chars", len([]rune(text)),
		"size", humanize.Bytes(uint64(len(audio))),
		"took", time.Since(start).Round(time.Millisecond))

	if e.cache != nil {
		// Cache errors are non-fatal
		_ = e.cache.Put(cacheKey, cache.Entry{Audio: audio, MIMEType: mimeType})
	}

	return audio, mimeType, nil
}

// describeError keeps the provider's own wording in the error text, which
// is what the gateway classifies on.
func describeError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			return fmt.Errorf("openai speech request failed (status=%d): %w", apiErr.StatusCode, err)
		}
		return fmt.Errorf("openai speech request failed (status=%d): %s: %w", apiErr.StatusCode, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return tts.NewTTSError(tts.ErrorCodeEngineTimeout, "speech request timed out", err)
	}
	return fmt.Errorf("openai speech request failed: %w", err)
}

// GetInfo returns engine information.
func (e *OpenAIEngine) GetInfo() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        string(tts.EngineOpenAI),
		Model:       e.model,
		Format:      e.format,
		MaxTextSize: tts.MaxTextLength,
		IsOnline:    true,
	}
}

// Validate checks that credentials are configured.
func (e *OpenAIEngine) Validate() error {
	if e.apiKey == "" {
		return tts.ErrMissingAPIKey
	}
	return nil
}

// Close releases the cache.
func (e *OpenAIEngine) Close() error {
	if e.cache != nil {
		e.cache.Clear()
	}
	return nil
}

// CacheStats returns cache statistics, or false when caching is disabled.
func (e *OpenAIEngine) CacheStats() (cache.CacheStats, bool) {
	if e.cache == nil {
		return cache.CacheStats{}, false
	}
	return e.cache.Stats(), true
}
