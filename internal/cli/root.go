package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wrexpt/internal/export"
	"github.com/roach88/wrexpt/internal/locator"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogFile    string

	// Locator resolves the store when --file is not given (for testing).
	// If nil, defaults to locator.Default().
	Locator locator.Locator

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs export.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func (o *RootOptions) locator() locator.Locator {
	if o.Locator != nil {
		return o.Locator
	}
	return locator.Default()
}

// NewRootCommand creates the root command for the wrexpt CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, letting
// tests inject a locator and run ID generator.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	exportOpts := &ExportOptions{RootOptions: opts}

	cmd := &cobra.Command{
		Use:   "wrexpt",
		Short: "Export a WebReplay store to XML",
		Long: `Export the logins, notes and bookmarks of a WebReplay store into a single
XML document.

The store is opened read-only. The document is written only when every record
was exported; on failure no output file is created.

Example:
  wrexpt -f ./WR.sdf -p secret -o ./export.xml
  wrexpt /f:./WR.sdf /p:secret /o:./export.xml
  wrexpt --encoding utf-16 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(exportOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML defaults file (or $WREXPT_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write logs to this file, rotated by size")

	addExportFlags(cmd, exportOpts)

	// Add subcommands
	cmd.AddCommand(NewLocateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
