package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/fieldmeta/internal/cli/ui"
	"github.com/conduit-lang/fieldmeta/internal/orm/render"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

type renderOptions struct {
	input bool
	attrs []string
}

// NewRenderCommand creates the render command
func NewRenderCommand(opts *globalOptions) *cobra.Command {
	ro := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render NAME [VALUE]",
		Short: "Render a stored value as HTML",
		Long: `Render a stored value of a registered field as escaped HTML text, or with
--input as the form control editing it. A missing VALUE renders an empty
field. Set members are given comma separated.`,
		Example: `  fieldmeta render tt_state open
  fieldmeta render dow sat,sun --input --attr class=days`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			name := args[0]
			if !e.registry.Exists(name) {
				fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownFieldError(name, e.registry.Names(), e.noColor))
				return ErrInvalid
			}

			var value any
			if len(args) == 2 {
				value = args[1]
			}

			attrs, err := parseAttrs(ro.attrs)
			if err != nil {
				return err
			}

			r := render.New(e.registry, e.locale)
			if ro.input {
				fmt.Fprintln(cmd.OutOrStdout(), r.AsHTMLInput(name, value, attrs, nil))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), r.AsHTMLStatic(name, value, nil))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ro.input, "input", false, "render a form control instead of text")
	cmd.Flags().StringArrayVar(&ro.attrs, "attr", nil, "extra control attribute as key=value (repeatable)")

	return cmd
}

func parseAttrs(pairs []string) (markup.Attrs, error) {
	attrs := markup.Attrs{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}
