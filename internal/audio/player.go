package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often playback completion is checked.
const pollInterval = 20 * time.Millisecond

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int // 24000 for OpenAI pcm output
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
}

// DefaultPlayerConfig returns the configuration matching the speech
// endpoint's pcm format: 24kHz, mono, signed 16-bit little-endian.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
	}
}

// Player plays raw PCM. oto allows a single context per process, so create
// one Player and reuse it.
type Player struct {
	context *oto.Context
	config  PlayerConfig
}

// NewPlayer creates a new audio player with the specified configuration.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	// Wait for context to be ready
	<-readyChan

	return &Player{context: ctx, config: config}, nil
}

// validateConfig validates the player configuration.
func validateConfig(config PlayerConfig) error {
	switch config.SampleRate {
	case 16000, 22050, 24000, 44100, 48000:
	default:
		return fmt.Errorf("unsupported sample rate %d Hz", config.SampleRate)
	}

	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}

	return nil
}

// Play plays pcm and blocks until playback finishes or ctx is done.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	// The reader owns its own copy so the caller may reuse pcm.
	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	defer player.Close() //nolint:errcheck
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Duration returns how long pcm plays with this player's configuration.
func (p *Player) Duration(pcm []byte) time.Duration {
	return Duration(len(pcm), p.config)
}

// Duration computes playback length for size bytes of PCM.
// Formula: samples = bytes / (channels * bytes_per_sample)
func Duration(size int, config PlayerConfig) time.Duration {
	bytesPerSample := config.BitDepth / 8
	if bytesPerSample == 0 || config.Channels == 0 || config.SampleRate == 0 {
		return 0
	}
	samples := size / (config.Channels * bytesPerSample)
	return time.Duration(samples) * time.Second / time.Duration(config.SampleRate)
}
