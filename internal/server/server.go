package server

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dgnsrekt/speechdemo/internal/cache"
	"github.com/dgnsrekt/speechdemo/internal/gateway"
	"github.com/dgnsrekt/speechdemo/internal/tts"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

const localsRequestID = "requestid"

//go:embed static/index.html
var indexHTML []byte

// Synthesizer is the part of the gateway the server depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, req gateway.Request) gateway.Result
	Mode() gateway.Mode
	Stats() gateway.Stats
}

// CacheReporter is implemented by engines that cache audio.
type CacheReporter interface {
	CacheStats() (cache.CacheStats, bool)
}

// Server is the HTTP presentation layer.
type Server struct {
	app    *fiber.App
	gw     Synthesizer
	cache  CacheReporter
	config Config
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCache reports the engine's audio cache in GET /api/status.
func WithCache(r CacheReporter) Option {
	return func(s *Server) {
		s.cache = r
	}
}

// SpeechRequest is the body of POST /api/speech.
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// SpeechResponse is returned by POST /api/speech. Exactly one of AudioData
// (real audio) or the demo fields is set when Success is true.
type SpeechResponse struct {
	Success    bool   `json:"success"`
	AudioData  string `json:"audioData,omitempty"`
	MIMEType   string `json:"mimeType,omitempty"`
	IsDemoMode bool   `json:"isDemoMode,omitempty"`
	DemoText   string `json:"demoText,omitempty"`
	DemoVoice  string `json:"demoVoice,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Mode  string            `json:"mode"`
	Stats gateway.Stats     `json:"stats"`
	Cache *cache.CacheStats `json:"cache,omitempty"`
}

// New creates the server and registers its routes.
func New(gw Synthesizer, config Config, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	s := &Server{
		gw:     gw,
		config: config,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "speechdemo",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.requestID, s.accessLog)

	s.app.Get("/", s.handleIndex)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")
	api.Get("/voices", s.handleVoices)
	api.Get("/samples", s.handleSamples)
	api.Get("/status", s.handleStatus)
	api.Post("/speech", s.handleSpeech)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", s.config.Addr)
		errCh <- s.app.Listen(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Locals(localsRequestID, id)
	return c.Next()
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler write the response so the logged status is
		// the one the client sees.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.logger.Debug("Request",
		"id", c.Locals(localsRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"took", time.Since(start))
	return nil
}

// handleError renders every error as the JSON failure shape.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	return c.Status(code).JSON(SpeechResponse{Success: false, Error: err.Error()})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

func (s *Server) handleVoices(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"voices":  tts.Voices,
		"default": tts.DefaultVoice,
	})
}

func (s *Server) handleSamples(c *fiber.Ctx) error {
	tag, samples := SamplesFor(c.Get(fiber.HeaderAcceptLanguage))
	return c.JSON(fiber.Map{
		"language": tag.String(),
		"samples":  samples,
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		Mode:  s.gw.Mode().String(),
		Stats: s.gw.Stats(),
	}
	if s.cache != nil {
		if stats, ok := s.cache.CacheStats(); ok {
			resp.Cache = &stats
		}
	}
	return c.JSON(resp)
}

func (s *Server) handleSpeech(c *fiber.Ctx) error {
	var req SpeechRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}
	if err := tts.ValidateText(req.Text); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Voice == "" {
		req.Voice = tts.DefaultVoice
	}
	if err := tts.ValidateVoice(req.Voice); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.config.Timeout)
	defer cancel()

	result := s.gw.Synthesize(ctx, gateway.Request{Text: req.Text, Voice: req.Voice})

	switch r := result.(type) {
	case gateway.Success:
		s.logger.Info("Speech generated",
			"id", c.Locals(localsRequestID),
			"voice", req.Voice,
			"size", humanize.Bytes(uint64(len(r.Audio))))
		return c.JSON(SpeechResponse{
			Success:   true,
			AudioData: base64.StdEncoding.EncodeToString(r.Audio),
			MIMEType:  r.MIMEType,
		})
	case gateway.SimulatedSuccess:
		return c.JSON(SpeechResponse{
			Success:    true,
			IsDemoMode: true,
			DemoText:   r.OriginalText,
			DemoVoice:  r.Voice,
			MIMEType:   r.MIMEType,
			Message:    r.Notice,
		})
	case gateway.Failure:
		return c.Status(fiber.StatusBadGateway).JSON(SpeechResponse{
			Success: false,
			Error:   r.Message,
		})
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("unexpected result %T", result))
	}
}
