package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tcmlookup",
		Short: "Look up employment contracts on the TCM-GO transparency portal",
		Long: `tcmlookup retrieves a person's admission record from the TCM-GO
transparency portal ("consulta de contratos de pessoal").

It drives a headless Chrome/Chromium through the portal's search form,
reads the results table and reports the first record whose contract type
is Admissao or Concursado.

Run "tcmlookup serve" for the HTTP API or "tcmlookup lookup <key>" for a
single lookup.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .tcmlookup in current or home directory)")
	cmd.PersistentFlags().String("log-format", "",
		"Log format: text or json (default text)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
