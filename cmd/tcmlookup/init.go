package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/config"
)

//go:embed templates/tcmlookup.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file",
		Long: `Init writes a commented configuration file holding the defaults.

Without flags the file is .tcmlookup in the current directory. Use --xdg
for config.yaml in the XDG config directory, or --print to write the
template to stdout.

Examples:
  # Create .tcmlookup here
  tcmlookup init

  # Create ~/.config/tcmlookup/config.yaml
  tcmlookup init --xdg

  # Replace an existing file
  tcmlookup init -o /etc/tcmlookup.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Path of the file to create")
	cmd.Flags().Bool("xdg", false,
		"Create the file in the XDG config directory (ignores --output)")
	cmd.Flags().Bool("print", false,
		"Print the template to stdout instead of writing a file")
	cmd.Flags().BoolP("force", "f", false,
		"Replace the file if it exists")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if toStdout, _ := flags.GetBool("print"); toStdout {
		_, err := cmd.OutOrStdout().Write(configTemplate)
		return err
	}

	path, err := flags.GetString("output")
	if err != nil {
		return err
	}
	if useXDG, _ := flags.GetBool("xdg"); useXDG {
		path = config.XDGConfigFile()
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}

	if err := writeTemplate(path, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// writeTemplate writes the configuration template to path with mode 0600.
// An existing file is kept unless force is set.
func writeTemplate(path string, force bool) error {
	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, mode, 0600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists; pass --force to replace it", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(configTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}
