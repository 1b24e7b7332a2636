package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/speechdemo/internal/gateway"
	"github.com/dgnsrekt/speechdemo/internal/server"
	"github.com/dgnsrekt/speechdemo/internal/tts"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("speechdemo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, tts.EngineOpenAI, s.TTS.Engine)
	assert.Equal(t, tts.FormatMP3, s.TTS.Format)
	assert.Equal(t, []string{"quota", "billing"}, s.TTS.DegradeTokens)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, s.TTS.Timeout, s.Server.Timeout)
}

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	v := newTestViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(defaultConfig)))

	s, err := loadSettings(v)
	require.NoError(t, err)

	want := defaultSettings()
	want.Server.Timeout = want.TTS.Timeout
	assert.Equal(t, want, s)
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("SPEECHDEMO_TTS_ENGINE", "demo")
	t.Setenv("SPEECHDEMO_TTS_DEGRADE_TOKENS", "limit,exhausted")
	t.Setenv("SPEECHDEMO_TTS_TIMEOUT", "5s")

	s, err := loadSettings(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, tts.EngineType("demo"), s.TTS.Engine)
	assert.Equal(t, []string{"limit", "exhausted"}, s.TTS.DegradeTokens)
	assert.Equal(t, 5*time.Second, s.Server.Timeout)
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr error
	}{
		{"engine", "tts.engine", "espeak", tts.ErrInvalidEngine},
		{"format", "tts.format", "ogg", tts.ErrInvalidFormat},
		{"timeout", "tts.timeout", "-1s", tts.ErrInvalidConfig},
		{"empty token", "tts.degrade_tokens", []string{"quota", " "}, tts.ErrInvalidConfig},
		{"log level", "log.level", "loud", tts.ErrInvalidConfig},
		{"addr", "server.addr", "", tts.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)

			_, err := loadSettings(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func newTestApp(t *testing.T) (*app, *log.Logger) {
	t.Helper()
	s := defaultSettings()
	s.TTS.Engine = tts.EngineMock
	s.TTS.Mock.Delay = 0

	logger := log.New(io.Discard)
	logger.SetLevel(log.InfoLevel)

	a, err := newApp(s, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, logger
}

func TestNewAppServesMockEngine(t *testing.T) {
	a, _ := newTestApp(t)

	res := a.gateway.Synthesize(context.Background(), gateway.Request{Text: "Hello", Voice: "alloy"})
	success, ok := res.(gateway.Success)
	require.True(t, ok, "expected Success, got %T", res)
	assert.Equal(t, "audio/pcm", success.MIMEType)
}

func TestServerOptionsReportCache(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Empty(t, a.serverOptions(), "the mock engine has no cache")

	s := defaultSettings()
	a, err := newApp(s, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.Len(t, a.serverOptions(), 1)

	srv := server.New(a.gateway, s.Server, nil, a.serverOptions()...)
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/status", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var status server.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.NotNil(t, status.Cache)
	assert.EqualValues(t, s.TTS.CacheSize, status.Cache.Capacity)
}

func TestAppReload(t *testing.T) {
	a, logger := newTestApp(t)

	v := newTestViper(t)
	v.Set("tts.engine", "mock")
	v.Set("tts.degrade_tokens", []string{"limit"})
	v.Set("log.level", "debug")
	a.reload(v, logger)

	assert.Equal(t, []string{"limit"}, a.classifier.Tokens())
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	// Invalid changes are ignored as a whole.
	v.Set("tts.degrade_tokens", []string{"other"})
	v.Set("tts.timeout", "-1s")
	a.reload(v, logger)
	assert.Equal(t, []string{"limit"}, a.classifier.Tokens())
}

func TestReloadedTokensDriveDemoMode(t *testing.T) {
	a, logger := newTestApp(t)

	v := newTestViper(t)
	v.Set("tts.engine", "mock")
	v.Set("tts.degrade_tokens", []string{"boom"})
	a.reload(v, logger)

	mock, ok := a.engine.(interface{ SetFailure(error) })
	require.True(t, ok)
	mock.SetFailure(errors.New("boom: credits exhausted"))

	res := a.gateway.Synthesize(context.Background(), gateway.Request{Text: "Hello", Voice: "echo"})
	_, ok = res.(gateway.SimulatedSuccess)
	assert.True(t, ok, "expected SimulatedSuccess, got %T", res)
	assert.Equal(t, gateway.ModeDegraded, a.gateway.Mode())
}

func TestWriteSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSettings(&buf, defaultSettings()))

	out := buf.String()
	assert.Contains(t, out, "degrade_tokens:")
	assert.Contains(t, out, "timeout: 1m0s")
	assert.NotContains(t, out, "apikey")

	// The printed YAML loads back into the same settings.
	v := newTestViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(&buf))
	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, defaultSettings().TTS, s.TTS)
}

func TestEnsureConfigFile(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "nested", "speechdemo.yml")
	require.NoError(t, ensureConfigFile(file))

	v := newTestViper(t)
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, "openai", v.GetString("tts.engine"))

	assert.Error(t, ensureConfigFile(filepath.Join(dir, "speechdemo.toml")))
}

func TestListVoices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listVoices(&buf))

	out := buf.String()
	assert.Equal(t, len(tts.Voices), strings.Count(out, "\n"))
	assert.Contains(t, out, "shimmer")
	assert.Contains(t, out, "(default)")
}

func TestReadText(t *testing.T) {
	text, err := readText([]string{"Hello", "world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	text, err = readText(nil, strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	_, err = readText(nil, nil)
	assert.ErrorIs(t, err, tts.ErrEmptyText)
}

func TestOutputPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	p, err := outputPath("~/hello.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "hello.mp3"), p)

	p, err = outputPath("-")
	require.NoError(t, err)
	assert.Equal(t, "-", p)

	p, err = outputPath("")
	require.NoError(t, err)
	assert.Empty(t, p)

	assert.Equal(t, "speech.mp3", defaultOutput("audio/mpeg"))
	assert.Equal(t, "speech.pcm", defaultOutput("audio/pcm"))
	assert.Equal(t, "speech.audio", defaultOutput("application/octet-stream"))
}

func TestWriteAudio(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeAudio(&stdout, "-", []byte("abc")))
	assert.Equal(t, "abc", stdout.String())

	require.NoError(t, writeAudio(&stdout, "", []byte("ignored")))
	assert.Equal(t, "abc", stdout.String())

	file := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, writeAudio(&stdout, file, []byte("mp3")))
	assert.FileExists(t, file)
}

func TestSayReportMarkdown(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		md := sayReport{
			voice:    "nova",
			mimeType: "audio/pcm",
			size:     48000,
			length:   time.Second,
			savedTo:  "/tmp/speech.pcm",
		}.markdown()

		assert.Contains(t, md, "# Speech generated")
		assert.Contains(t, md, "nova")
		assert.Contains(t, md, "48 kB")
		assert.Contains(t, md, "1s")
		assert.Contains(t, md, "/tmp/speech.pcm")
	})

	t.Run("demo mode", func(t *testing.T) {
		sim := gateway.Simulate("Hello world", "alloy")
		md := sayReport{voice: "alloy", simulated: &sim, copied: true}.markdown()

		assert.Contains(t, md, "# Demo mode")
		assert.Contains(t, md, sim.Notice)
		assert.Contains(t, md, "copied")
		assert.NotContains(t, md, "Saved to")
	})
}

func TestRenderMarkdownPlain(t *testing.T) {
	out, err := renderMarkdown("# Speech generated\n\n- **Voice:** nova\n", false)
	require.NoError(t, err)
	assert.Contains(t, out, "Speech generated")
	assert.Contains(t, out, "nova")
}

func TestSayModel(t *testing.T) {
	cancelled := false
	m := newSayModel("Synthesizing", func() gateway.Result {
		return gateway.Success{Audio: []byte("x"), MIMEType: "audio/mpeg"}
	}, func() { cancelled = true })

	assert.Contains(t, m.View(), "Synthesizing")
	assert.NotNil(t, m.Init())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(sayModel)
	assert.True(t, cancelled)
	assert.Contains(t, m.View(), "Cancelling")

	updated, cmd := m.Update(synthesisDoneMsg{result: gateway.Success{MIMEType: "audio/mpeg"}})
	m = updated.(sayModel)
	assert.NotNil(t, cmd)
	assert.IsType(t, gateway.Success{}, m.result)
	assert.Empty(t, m.View())
}
