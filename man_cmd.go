package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}

		manPage = manPage.WithSection("Environment", "OPENAI_API_KEY\n  API key for the hosted speech endpoint.\n\n"+
			"OPENAI_BASE_URL\n  Override the endpoint base URL.\n\n"+
			"SPEECHDEMO_CONFIG_HOME\n  Directory searched first for speechdemo.yml.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
