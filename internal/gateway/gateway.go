package gateway

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Capability is the remote speech synthesis provider. Implementations make
// a single attempt per call and report failures with a readable error.
type Capability interface {
	Synthesize(ctx context.Context, text, voice string) (audio []byte, mimeType string, err error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(ctx context.Context, text, voice string) ([]byte, string, error)

// Synthesize calls f.
func (f CapabilityFunc) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	return f(ctx, text, voice)
}

// Mode is the gateway's Normal/Degraded flag.
type Mode int32

const (
	// ModeNormal calls the remote capability.
	ModeNormal Mode = iota

	// ModeDegraded simulates every request. There is no way back.
	ModeDegraded
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Stats counts how requests were answered.
type Stats struct {
	RemoteCalls int64 `json:"remoteCalls"`
	Successes   int64 `json:"successes"`
	Simulated   int64 `json:"simulated"`
	Failures    int64 `json:"failures"`
}

// Gateway is a stateful facade over a remote Capability. It is safe for
// concurrent use.
type Gateway struct {
	remote     Capability
	classifier *Classifier
	logger     *log.Logger

	mode atomic.Int32

	remoteCalls atomic.Int64
	successes   atomic.Int64
	simulated   atomic.Int64
	failures    atomic.Int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClassifier sets the failure classifier. The classifier may be shared
// with a config watcher that swaps its tokens.
func WithClassifier(c *Classifier) Option {
	return func(g *Gateway) {
		if c != nil {
			g.classifier = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a gateway in ModeNormal.
func New(remote Capability, opts ...Option) *Gateway {
	g := &Gateway{
		remote:     remote,
		classifier: NewClassifier(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.mode.Store(int32(ModeNormal))
	return g
}

// Mode returns the current mode.
func (g *Gateway) Mode() Mode {
	return Mode(g.mode.Load())
}

// Stats returns a snapshot of the request counters.
func (g *Gateway) Stats() Stats {
	return Stats{
		RemoteCalls: g.remoteCalls.Load(),
		Successes:   g.successes.Load(),
		Simulated:   g.simulated.Load(),
		Failures:    g.failures.Load(),
	}
}

// Synthesize answers a request. In ModeDegraded it returns a
// SimulatedSuccess without calling the remote capability. Otherwise it
// makes exactly one remote call: success is passed through untouched, a
// quota/billing failure degrades the gateway and is answered with a
// SimulatedSuccess, and any other failure becomes a Failure.
func (g *Gateway) Synthesize(ctx context.Context, req Request) Result {
	if g.Mode() == ModeDegraded {
		g.simulated.Add(1)
		g.logger.Debug("Demo mode, skipping remote synthesis", "voice", req.Voice)
		return Simulate(req.Text, req.Voice)
	}

	g.remoteCalls.Add(1)
	audio, mimeType, err := g.remote.Synthesize(ctx, req.Text, req.Voice)
	if err == nil {
		g.successes.Add(1)
		return Success{Audio: audio, MIMEType: mimeType}
	}

	classified := g.classifier.Classify(err)
	if classified.Kind == KindQuotaOrBilling {
		g.degrade(classified)
		g.simulated.Add(1)
		return Simulate(req.Text, req.Voice)
	}

	g.failures.Add(1)
	g.logger.Error("Speech generation failed", "voice", req.Voice, "err", err)
	return Failure{
		Message: "speech generation failed: " + err.Error(),
		Err:     classified,
	}
}

// degrade flips the mode. Concurrent callers may race here; the transition
// is idempotent so only the first one logs.
func (g *Gateway) degrade(cause *CapabilityError) {
	if g.mode.CompareAndSwap(int32(ModeNormal), int32(ModeDegraded)) {
		g.logger.Warn("Remote synthesis quota exhausted, switching to demo mode",
			"token", cause.Token,
			"err", cause.Err)
	}
}
