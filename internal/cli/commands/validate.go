package commands

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/fieldmeta/internal/cli/ui"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
)

type validateOptions struct {
	input   string
	fields  string
	all     bool
	jsonOut bool
}

// NewValidateCommand creates the validate command
func NewValidateCommand(opts *globalOptions) *cobra.Command {
	vo := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and normalize submitted values",
		Long: `Validate a JSON object of raw values, keyed by field name, the way a form
submission is validated. Prints the normalized values, or every error found.

By default the fields checked are the keys of the input. --fields names a
JSON object of field name to descriptor override (null for none), --all
checks every registered field.`,
		Example: `  fieldmeta validate --input values.json
  echo '{"tt_qty":"12"}' | fieldmeta validate --input - --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, vo)
		},
	}

	cmd.Flags().StringVarP(&vo.input, "input", "i", "", "JSON file of raw values (- for stdin)")
	cmd.Flags().StringVarP(&vo.fields, "fields", "f", "", "JSON file of fields to check")
	cmd.Flags().BoolVar(&vo.all, "all", false, "check every registered field")
	cmd.Flags().BoolVar(&vo.jsonOut, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *globalOptions, vo *validateOptions) error {
	e, err := opts.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	var raw map[string]any
	if err := readJSON(cmd, vo.input, &raw); err != nil {
		return err
	}

	fields := map[string]*schema.Descriptor{}
	switch {
	case vo.fields != "":
		if err := readJSON(cmd, vo.fields, &fields); err != nil {
			return err
		}
		if err := schema.BindCallbacks(fields, validation.Callbacks()); err != nil {
			return err
		}
	case vo.all:
		for _, name := range e.registry.Names() {
			fields[name] = nil
		}
	default:
		for name := range raw {
			fields[name] = nil
		}
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to validate")
	}

	engine := validation.New(e.registry, e.locale, validation.WithLogger(e.logger))
	result := engine.Validate(fields, raw)

	out := cmd.OutOrStdout()
	if vo.jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else if result.Valid() {
		ui.WriteSuccess(out, fmt.Sprintf("%d field(s) valid", len(fields)), e.noColor)
		ui.KeyValue(out, e.noColor, valuePairs(result.Values)...)
	} else {
		for _, ferr := range result.Errors {
			ui.WriteFailure(out, fmt.Sprintf("%s: %s", ferr.Field, ferr.Message), e.noColor)
		}
	}

	if !result.Valid() {
		return ErrInvalid
	}
	return nil
}

func valuePairs(values map[string]any) [][2]string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]string, len(names))
	for i, name := range names {
		v := "(empty)"
		if values[name] != nil {
			v = fmt.Sprint(values[name])
		}
		pairs[i] = [2]string{name, v}
	}
	return pairs
}
