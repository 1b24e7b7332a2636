package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/speechdemo/internal/audio"
	"github.com/dgnsrekt/speechdemo/internal/gateway"
	"github.com/dgnsrekt/speechdemo/internal/tts"
)

var (
	sayVoice string
	sayOut   string
	sayPlay  bool
	sayCopy  bool

	sayCmd = &cobra.Command{
		Use:   "say [TEXT]",
		Short: "Synthesize text from the command line",
		Long: paragraph(fmt.Sprintf("\n%s text through the same gateway the server uses. "+
			"Reads stdin when no text is given. In demo mode a notice is printed instead of writing audio.",
			keyword("Synthesize"))),
		Example: paragraph("speechdemo say \"Hello there\"\n" +
			"speechdemo say --voice nova --out ~/hello.mp3 \"Hello there\"\n" +
			"echo こんにちは | speechdemo say --play"),
		Args: cobra.ArbitraryArgs,
		RunE: runSay,
	}
)

func init() {
	sayCmd.Flags().StringVarP(&sayVoice, "voice", "v", tts.DefaultVoice, "voice to use (see `speechdemo voices`)")
	sayCmd.Flags().StringVarP(&sayOut, "out", "o", "", "write audio to this file, - for stdout (default speech.<ext>)")
	sayCmd.Flags().BoolVarP(&sayPlay, "play", "p", false, "play the audio (requests pcm output)")
	sayCmd.Flags().BoolVarP(&sayCopy, "copy", "c", false, "copy the demo notice or the output path to the clipboard")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readText joins args, or reads r when there are none.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if r == nil {
		return "", tts.ErrEmptyText
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read from reader: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// outputPath expands out. An empty result means no file was requested.
func outputPath(out string) (string, error) {
	if out == "" || out == "-" {
		return out, nil
	}
	p, err := homedir.Expand(out)
	if err != nil {
		return "", fmt.Errorf("unable to expand path: %w", err)
	}
	return p, nil
}

// defaultOutput names the file written when neither --out nor --play is set.
func defaultOutput(mimeType string) string {
	format, ok := tts.FormatForMIME(mimeType)
	if !ok {
		return "speech.audio"
	}
	return "speech." + string(format)
}

func runSay(cmd *cobra.Command, args []string) error {
	logger := log.Default()

	var in io.Reader
	if len(args) == 0 {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes {
			in = os.Stdin
		}
	}
	text, err := readText(args, in)
	if err != nil {
		return err
	}
	if err := tts.ValidateText(text); err != nil {
		return err
	}
	if err := tts.ValidateVoice(sayVoice); err != nil {
		return err
	}

	s := cfg
	if sayPlay {
		s.TTS.Format = tts.FormatPCM
	}
	out, err := outputPath(sayOut)
	if err != nil {
		return err
	}

	a, err := newApp(s, logger)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := gateway.Request{Text: text, Voice: sayVoice}
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	result, err := synthesize(ctx, a.gateway, req, s.TTS.Timeout, interactive)
	if err != nil {
		return err
	}

	var summary sayReport
	summary.voice = sayVoice

	switch r := result.(type) {
	case gateway.Failure:
		return r
	case gateway.SimulatedSuccess:
		summary.simulated = &r
		if sayCopy {
			if err := clipboard.WriteAll(r.Notice); err != nil {
				logger.Warn("Could not copy to clipboard", "err", err)
			} else {
				summary.copied = true
			}
		}
	case gateway.Success:
		summary.mimeType = r.MIMEType
		summary.size = len(r.Audio)
		if r.MIMEType == tts.FormatPCM.MIMEType() {
			summary.length = audio.Duration(len(r.Audio), audio.DefaultPlayerConfig())
		}

		if out == "" && !sayPlay {
			out = defaultOutput(r.MIMEType)
		}
		if err := writeAudio(cmd.OutOrStdout(), out, r.Audio); err != nil {
			return err
		}
		summary.savedTo = out

		if sayCopy && out != "" && out != "-" {
			if err := clipboard.WriteAll(out); err != nil {
				logger.Warn("Could not copy to clipboard", "err", err)
			} else {
				summary.copied = true
			}
		}

		if sayPlay {
			if err := playPCM(ctx, r); err != nil {
				return err
			}
		}
	}

	// With audio on stdout the summary goes to stderr.
	w := cmd.OutOrStdout()
	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if out == "-" {
		w = cmd.ErrOrStderr()
		isTerminal = interactive
	}
	rendered, err := renderMarkdown(summary.markdown(), isTerminal)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, rendered); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func writeAudio(stdout io.Writer, out string, data []byte) error {
	switch out {
	case "":
		return nil
	case "-":
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("unable to write audio: %w", err)
		}
		return nil
	default:
		if err := os.WriteFile(out, data, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("unable to write audio file: %w", err)
		}
		return nil
	}
}

func playPCM(ctx context.Context, r gateway.Success) error {
	if r.MIMEType != tts.FormatPCM.MIMEType() {
		return fmt.Errorf("cannot play %s audio, only %s", r.MIMEType, tts.FormatPCM.MIMEType())
	}
	player, err := audio.NewPlayer(audio.DefaultPlayerConfig())
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	if err := player.Play(ctx, r.Audio); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// synthesize runs one request with timeout. On a terminal a spinner is
// shown until the gateway answers; ctrl+c cancels the request.
func synthesize(ctx context.Context, gw *gateway.Gateway, req gateway.Request, timeout time.Duration, interactive bool) (gateway.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := func() gateway.Result {
		return gw.Synthesize(ctx, req)
	}
	if !interactive {
		return run(), nil
	}

	label := fmt.Sprintf("Synthesizing %q with %s…", runewidth.Truncate(req.Text, labelWidth, "…"), req.Voice)
	m := newSayModel(label, run, cancel)
	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("unable to run spinner: %w", err)
	}
	return final.(sayModel).result, nil
}

// labelWidth is the number of terminal cells of text shown by the spinner.
const labelWidth = 32

type synthesisDoneMsg struct {
	result gateway.Result
}

// sayModel shows a spinner while a synthesis request is in flight.
type sayModel struct {
	spinner spinner.Model
	label   string
	run     func() gateway.Result
	cancel  context.CancelFunc
	result  gateway.Result
}

func newSayModel(label string, run func() gateway.Result, cancel context.CancelFunc) sayModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	return sayModel{
		spinner: s,
		label:   label,
		run:     run,
		cancel:  cancel,
	}
}

func (m sayModel) Init() tea.Cmd {
	run := m.run
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return synthesisDoneMsg{result: run()}
	})
}

func (m sayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case synthesisDoneMsg:
		m.result = msg.result
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			// The request returns promptly once its context is cancelled.
			m.cancel()
			m.label = "Cancelling…"
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m sayModel) View() string {
	if m.result != nil {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.label)
}

// sayReport is what the say command prints after synthesis.
type sayReport struct {
	voice     string
	mimeType  string
	size      int
	length    time.Duration
	savedTo   string
	copied    bool
	simulated *gateway.SimulatedSuccess
}

func (r sayReport) markdown() string {
	var b strings.Builder

	if r.simulated != nil {
		b.WriteString("# Demo mode\n\n")
		fmt.Fprintf(&b, "> %s\n\n", r.simulated.Notice)
		fmt.Fprintf(&b, "- **Voice:** %s\n", r.simulated.Voice)
		fmt.Fprintf(&b, "- **Preview:** %s\n", r.simulated.TruncatedPreview)
		if r.copied {
			b.WriteString("- Notice copied to clipboard\n")
		}
		b.WriteString("\nThe speech API reported a quota or billing problem. " +
			"Every further request is simulated until the process restarts.\n")
		return b.String()
	}

	b.WriteString("# Speech generated\n\n")
	fmt.Fprintf(&b, "- **Voice:** %s\n", r.voice)
	fmt.Fprintf(&b, "- **Format:** `%s`\n", r.mimeType)
	fmt.Fprintf(&b, "- **Size:** %s\n", humanize.Bytes(uint64(r.size))) //nolint:gosec
	if r.length > 0 {
		fmt.Fprintf(&b, "- **Length:** %s\n", r.length.Round(time.Millisecond))
	}
	switch r.savedTo {
	case "":
	case "-":
		b.WriteString("- Written to stdout\n")
	default:
		fmt.Fprintf(&b, "- **Saved to:** `%s`\n", r.savedTo)
	}
	if r.copied {
		b.WriteString("- Path copied to clipboard\n")
	}
	return b.String()
}

func renderMarkdown(md string, isTerminal bool) (string, error) {
	style := glamour.WithAutoStyle()
	if !isTerminal {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		style,
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
