package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/speechdemo/internal/tts"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the available voices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listVoices(cmd.OutOrStdout())
	},
}

func listVoices(w io.Writer) error {
	for _, v := range tts.Voices {
		line := "  " + keyword(v.ID)
		if v.ID == tts.DefaultVoice {
			line += " " + faint("(default)")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}
