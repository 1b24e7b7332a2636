package audio

import (
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  PlayerConfig
		wantErr bool
	}{
		{"default", DefaultPlayerConfig(), false},
		{"cd quality stereo", PlayerConfig{SampleRate: 44100, Channels: 2, BitDepth: 16}, false},
		{"odd sample rate", PlayerConfig{SampleRate: 12345, Channels: 1, BitDepth: 16}, true},
		{"too many channels", PlayerConfig{SampleRate: 24000, Channels: 6, BitDepth: 16}, true},
		{"8-bit", PlayerConfig{SampleRate: 24000, Channels: 1, BitDepth: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	cfg := DefaultPlayerConfig()

	// One second of 24kHz mono 16-bit audio
	if got := Duration(48000, cfg); got != time.Second {
		t.Errorf("expected 1s, got %s", got)
	}

	stereo := PlayerConfig{SampleRate: 48000, Channels: 2, BitDepth: 16}
	if got := Duration(96000, stereo); got != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", got)
	}

	if got := Duration(100, PlayerConfig{}); got != 0 {
		t.Errorf("expected 0 for empty config, got %s", got)
	}
}
