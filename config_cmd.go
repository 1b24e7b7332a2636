package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# log level: debug, info, warn or error
log:
  level: "info"

# HTTP server
server:
  addr: "127.0.0.1:3000"

# speech synthesis
tts:
  # engine: openai or mock
  engine: "openai"
  model: "tts-1"
  # response format: mp3, opus, aac, flac, wav or pcm
  format: "mp3"
  # upper bound for one request
  timeout: "60s"
  # outbound rate limit, 0 disables it
  requests_per_minute: 50
  # in-memory audio cache in bytes, 0 disables it
  cache_size: 33554432
  # errors containing any of these switch to demo mode (case-sensitive)
  degrade_tokens:
    - "quota"
    - "billing"

  # offline engine
  mock:
    delay: "300ms"
    # set to e.g. "You exceeded your current quota" to try demo mode
    fail_with: ""
`

var printConfig bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the speechdemo config file",
	Long:    paragraph(fmt.Sprintf("\n%s the speechdemo config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("speechdemo config\nspeechdemo config --config path/to/config.yml\nspeechdemo config --print"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printConfig {
			return writeSettings(cmd.OutOrStdout(), cfg)
		}

		file := configPath()
		if err := ensureConfigFile(file); err != nil {
			return err
		}

		c, err := editor.Cmd("speechdemo", file)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", file)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
}

// writeSettings prints s as YAML.
func writeSettings(w io.Writer, s settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("unable to encode configuration: %w", err)
	}
	return enc.Close()
}

func ensureConfigFile(configFile string) error {
	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
