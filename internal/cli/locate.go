package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/wrexpt/internal/locator"
)

// LocateResult is the output of the locate command.
type LocateResult struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

func (r LocateResult) String() string {
	if r.Exists {
		return r.Path
	}
	return r.Path + " (missing)"
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Print the default store path",
		Long: `Print the store file wrexpt uses when --file is not given.

The storage directory comes from $WEBREPLAY_STORAGE_PATH or, on Windows,
from the WebReplay registry settings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rootOpts.locator().Locate()
			if errors.Is(err, locator.ErrNotFound) {
				return WrapExitError(ExitNotFound, "no WebReplay store configured", err)
			}
			if err != nil {
				return WrapExitError(ExitUsage, "cannot locate store", err)
			}

			_, statErr := os.Stat(path)
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			return formatter.Success(LocateResult{Path: path, Exists: statErr == nil})
		},
	}
}
