package main

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/speechdemo/internal/gateway"
	"github.com/dgnsrekt/speechdemo/internal/server"
	"github.com/dgnsrekt/speechdemo/internal/tts"
	"github.com/dgnsrekt/speechdemo/internal/tts/engines"
)

// settings is the effective configuration after merging defaults, the
// config file, SPEECHDEMO_* variables and flags.
type settings struct {
	Log    logSettings   `mapstructure:"log" yaml:"log"`
	Server server.Config `mapstructure:"server" yaml:"server"`
	TTS    tts.Config    `mapstructure:"tts" yaml:"tts"`
}

type logSettings struct {
	Level string `mapstructure:"level" yaml:"level"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

func defaultSettings() settings {
	return settings{
		Log:    logSettings{Level: "info"},
		Server: server.DefaultConfig(),
		TTS:    tts.DefaultConfig(),
	}
}

// setDefaults registers every default with v so that environment
// variables are picked up by AutomaticEnv even without a config file.
func setDefaults(v *viper.Viper) {
	d := defaultSettings()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("tts.engine", string(d.TTS.Engine))
	v.SetDefault("tts.model", d.TTS.Model)
	v.SetDefault("tts.format", string(d.TTS.Format))
	v.SetDefault("tts.timeout", d.TTS.Timeout)
	v.SetDefault("tts.requests_per_minute", d.TTS.RequestsPerMinute)
	v.SetDefault("tts.cache_size", d.TTS.CacheSize)
	v.SetDefault("tts.degrade_tokens", d.TTS.DegradeTokens)
	v.SetDefault("tts.mock.delay", d.TTS.Mock.Delay)
	v.SetDefault("tts.mock.fail_with", d.TTS.Mock.FailWith)
}

// loadSettings decodes and validates the configuration held by v.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	s.Server.Timeout = s.TTS.Timeout

	if err := s.TTS.Validate(); err != nil {
		return settings{}, err
	}
	if err := s.Server.Validate(); err != nil {
		return settings{}, fmt.Errorf("%w: %w", tts.ErrInvalidConfig, err)
	}
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		return settings{}, fmt.Errorf("%w: log.level %q", tts.ErrInvalidConfig, s.Log.Level)
	}
	return s, nil
}

// app bundles what both serve and say need.
type app struct {
	settings   settings
	engine     tts.TTSEngine
	classifier *gateway.Classifier
	gateway    *gateway.Gateway
}

// newApp builds the engine and the gateway once.
func newApp(s settings, logger *log.Logger) (*app, error) {
	secrets, err := env.ParseAs[tts.Secrets]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	engine, err := engines.New(s.TTS, secrets, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(); err != nil {
		// Requests will fail until a key is provided; the demo still serves.
		logger.Warn("Engine is not fully configured", "engine", engine.GetInfo().Name, "err", err)
	}

	classifier := gateway.NewClassifier(s.TTS.DegradeTokens...)
	gw := gateway.New(engine,
		gateway.WithClassifier(classifier),
		gateway.WithLogger(logger),
	)

	info := engine.GetInfo()
	logger.Info("Synthesis engine ready",
		"engine", info.Name,
		"model", info.Model,
		"format", info.Format,
		"degrade_tokens", classifier.Tokens())

	return &app{
		settings:   s,
		engine:     engine,
		classifier: classifier,
		gateway:    gw,
	}, nil
}

// serverOptions reports the engine's audio cache when it has one.
func (a *app) serverOptions() []server.Option {
	if r, ok := a.engine.(server.CacheReporter); ok {
		return []server.Option{server.WithCache(r)}
	}
	return nil
}

// Close releases engine resources.
func (a *app) Close() error {
	return a.engine.Close()
}

// reload applies the settings that may change while running: the degrade
// tokens and the log level. Everything else needs a restart.
func (a *app) reload(v *viper.Viper, logger *log.Logger) {
	s, err := loadSettings(v)
	if err != nil {
		logger.Error("Ignoring invalid configuration change", "err", err)
		return
	}

	if !slices.Equal(s.TTS.DegradeTokens, a.classifier.Tokens()) {
		a.classifier.SetTokens(s.TTS.DegradeTokens)
		logger.Info("Degrade tokens updated", "tokens", a.classifier.Tokens())
	}

	// --debug pins the level.
	if a.settings.Log.Debug {
		return
	}
	if lvl, err := log.ParseLevel(s.Log.Level); err == nil && lvl != logger.GetLevel() {
		logger.SetLevel(lvl)
		logger.Info("Log level updated", "level", lvl)
	}
}
