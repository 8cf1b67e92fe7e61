package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/cli/config"
	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/logging"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// ErrInvalid is returned by commands whose input failed validation. The
// failure has already been reported
var ErrInvalid = errors.New("input is invalid")

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	locale     string
	schema     []string
	noColor    bool
}

// env is what a command runs against once flags and config are resolved
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *schema.Registry
	locale   *locale.Locale
	noColor  bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "fieldmeta",
		Short: "Field metadata registry, validator, renderer and SQL filter compiler",
		Long: `fieldmeta describes form fields once and derives everything else from the
description: input validation and normalization, HTML rendering and SQL
predicates for search filters.

Field descriptions live in package files (YAML) listed in fieldmeta.yaml or
passed with --schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./fieldmeta.yaml)")
	flags.StringVarP(&opts.locale, "locale", "l", "", "locale for parsing and messages (overrides config)")
	flags.StringSliceVarP(&opts.schema, "schema", "s", nil, "package files to load (overrides config)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewFieldsCommand(opts))
	rootCmd.AddCommand(NewValidateCommand(opts))
	rootCmd.AddCommand(NewRenderCommand(opts))
	rootCmd.AddCommand(NewSQLCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))

	return rootCmd
}

// load resolves configuration, logging and the field registry
func (o *globalOptions) load() (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.locale != "" {
		cfg.Locale = o.locale
	}
	if len(o.schema) > 0 {
		cfg.Schema = o.schema
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	reg := schema.NewRegistry(schema.WithLogger(logger))
	if err := reg.LoadFiles(validation.Callbacks(), cfg.Schema...); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		locale:   locale.Lookup(cfg.Locale),
		noColor:  o.noColor || color.NoColor,
	}, nil
}

// readJSON decodes the JSON file at path into v. "-" reads stdin
func readJSON(cmd *cobra.Command, path string, v any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)
			for _, line := range [][2]string{
				{"fieldmeta version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				title.Fprint(out, line[0])
				fmt.Fprintln(out, line[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrInvalid) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
