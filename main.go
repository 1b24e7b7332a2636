// Package main provides the entry point for the speechdemo CLI and server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/speechdemo/internal/server"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	defaultConfigPath string
	cfg               settings
	logCloser         = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "speechdemo",
		Short: "Text-to-speech demo with a graceful demo mode",
		Long: paragraph(
			fmt.Sprintf("\nServe a text-to-speech demo that %s when the hosted API runs out of quota.",
				keyword("keeps answering")),
		),
		Example:          paragraph("speechdemo\nspeechdemo --addr :8080 --engine mock\nspeechdemo say --voice nova \"Hello there\""),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: runServe,
	}
)

func validateOptions(*cobra.Command) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg = s

	closer, err := setupLog(cfg.Log.Level, cfg.Log.Debug)
	if err != nil {
		return err
	}
	logCloser = closer

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
	return nil
}

func runServe(*cobra.Command, []string) error {
	logger := log.Default()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			logger.Debug("Configuration changed", "path", e.Name, "op", e.Op)
			a.reload(viper.GetViper(), logger)
		})
		viper.WatchConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.gateway, cfg.Server, logger, a.serverOptions()...)
	url := "http://" + cfg.Server.Addr
	link := keyword(url)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		link = termenv.Hyperlink(url, link)
	}
	fmt.Fprintf(os.Stderr, "\n  Listening on %s\n\n", link)
	return srv.Run(ctx)
}

func main() {
	err := rootCmd.Execute()
	_ = logCloser()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", configPath()))
	rootCmd.PersistentFlags().String("engine", "", "speech engine: openai or mock")
	rootCmd.PersistentFlags().Bool("debug", false, "log debug output to a file in the cache dir")
	rootCmd.Flags().String("addr", server.DefaultAddr, "listen address")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("server.addr", rootCmd.Flags().Lookup("addr"))

	setDefaults(viper.GetViper())

	rootCmd.AddCommand(sayCmd, voicesCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "speechdemo")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "speechdemo")}, dirs...)
	}

	if c := os.Getenv("SPEECHDEMO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("speechdemo")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("speechdemo")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	defaultConfigPath = filepath.Join(dirs[0], "speechdemo.yml")
}

// configPath is the file the config command edits.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}
