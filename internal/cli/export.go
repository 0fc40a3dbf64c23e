package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/wrexpt/internal/config"
	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/export"
	"github.com/roach88/wrexpt/internal/store"
)

// ExportOptions holds flags for the export run of the root command.
type ExportOptions struct {
	*RootOptions
	File     string
	Password string
	Output   string
	Driver   string
	Encoding string
}

// ExportSummary is printed after a successful export.
type ExportSummary struct {
	RunID     string `json:"run_id"`
	Store     string `json:"store"`
	Output    string `json:"output"`
	Logins    int    `json:"logins"`
	Notes     int    `json:"notes"`
	Bookmarks int    `json:"bookmarks"`
	Bytes     int    `json:"bytes"`
}

func (s ExportSummary) String() string {
	var b strings.Builder
	b.WriteString("Export complete\n")
	fmt.Fprintf(&b, "  logins:    %d\n", s.Logins)
	fmt.Fprintf(&b, "  notes:     %d\n", s.Notes)
	fmt.Fprintf(&b, "  bookmarks: %d\n", s.Bookmarks)
	fmt.Fprintf(&b, "  output:    %s", s.Output)
	return b.String()
}

func addExportFlags(cmd *cobra.Command, opts *ExportOptions) {
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "WebReplay store file (default: located from the WebReplay installation)")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "store password")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output XML file (default: <store>.xml)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", fmt.Sprintf("database driver %v (default %q)", store.ValidDrivers, store.DriverSQLite3))
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", fmt.Sprintf("output encoding %v (default %q)", document.ValidEncodings, document.UTF8))
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	file, err := loadConfigFile(opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitUsage, "invalid config file", err)
	}
	mergeConfigFile(cmd.Flags(), opts, file)

	logger, logCloser := newLogger(cmd.ErrOrStderr(), opts.Verbose, opts.LogFile)
	defer logCloser.Close()

	storePath := opts.File
	if storePath == "" {
		storePath, err = opts.locator().Locate()
		if err != nil {
			return WrapExitError(ExitUsage, "no database file given and none could be located", err)
		}
		logger.Debug("located store", "path", storePath)
	}

	enc, err := document.ParseEncoding(opts.Encoding)
	if err != nil {
		return WrapExitError(ExitUsage, "invalid arguments", err)
	}

	cfg := config.Config{
		StorePath:  storePath,
		Password:   opts.Password,
		OutputPath: opts.Output,
		Driver:     opts.Driver,
		Encoding:   enc,
	}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitUsage, "invalid arguments", err)
	}

	// Anything that is not a reachable regular file counts as missing.
	if fi, err := os.Stat(cfg.StorePath); err != nil || fi.IsDir() {
		return NewExitError(ExitNotFound, "cannot find database file: "+cfg.StorePath)
	}

	// Setup signal handling for cancellation
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling export", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	exportOpts := []export.Option{export.WithLogger(logger)}
	if opts.RunIDs != nil {
		exportOpts = append(exportOpts, export.WithRunIDGenerator(opts.RunIDs))
	}
	report, err := export.New(cfg, exportOpts...).Run(ctx)
	if err != nil {
		return WrapExitError(ExitExportFailure, "cannot export "+cfg.StorePath, err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return formatter.Success(ExportSummary{
		RunID:     report.RunID,
		Store:     report.Store,
		Output:    report.Output,
		Logins:    report.Logins,
		Notes:     report.Notes,
		Bookmarks: report.Bookmarks,
		Bytes:     report.Bytes,
	})
}

// loadConfigFile reads the defaults file named by --config or
// $WREXPT_CONFIG. No file means empty defaults.
func loadConfigFile(path string) (*config.File, error) {
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	if path == "" {
		return &config.File{}, nil
	}
	return config.LoadFile(path)
}

// mergeConfigFile fills every option not set on the command line from file.
func mergeConfigFile(flags *pflag.FlagSet, opts *ExportOptions, file *config.File) {
	changed := flags.Changed
	if !changed("file") && file.Store != "" {
		opts.File = file.Store
	}
	if !changed("output") && file.Output != "" {
		opts.Output = file.Output
	}
	if !changed("driver") && file.Driver != "" {
		opts.Driver = file.Driver
	}
	if !changed("encoding") && file.Encoding != "" {
		opts.Encoding = file.Encoding
	}
	if !changed("log-file") && file.LogFile != "" {
		opts.LogFile = file.LogFile
	}
	if !changed("verbose") && file.Verbose {
		opts.Verbose = true
	}
}
