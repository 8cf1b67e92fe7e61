package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/fieldmeta/internal/cli/ui"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

// NewFieldsCommand creates the fields command
func NewFieldsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields [name]",
		Short: "List registered fields or describe one",
		Long: `List every registered field with its class and label, or show the full
resolved description of one field. Aliases are resolved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			if len(args) == 1 {
				return describeField(cmd, e, args[0])
			}
			return listFields(cmd, e)
		},
	}
}

func listFields(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	names := e.registry.Names()
	if len(names) == 0 {
		fmt.Fprintln(out, "No fields registered. Pass package files with --schema.")
		return nil
	}

	tbl := ui.NewTable(out, e.noColor, "FIELD", "CLASS", "WIDTH", "LABEL")
	for _, name := range names {
		desc, _ := e.registry.Get(name, nil)
		width := ""
		if desc.Width > 0 {
			width = strconv.Itoa(desc.Width)
		}
		tbl.AddRow(name, desc.Class.String(), width, e.registry.Label(name, schema.LabelDefault, nil))
	}
	tbl.Render()

	if pending := e.registry.Pending(); len(pending) > 0 {
		fmt.Fprintf(out, "\nUnresolved aliases: %s\n", strings.Join(pending, ", "))
	}
	return nil
}

func describeField(cmd *cobra.Command, e *env, name string) error {
	desc, ok := e.registry.Get(name, nil)
	if !ok {
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownFieldError(name, e.registry.Names(), e.noColor))
		return ErrInvalid
	}

	pairs := [][2]string{
		{"name", name},
		{"class", desc.Class.String()},
		{"label", e.registry.Label(name, schema.LabelDefault, nil)},
	}
	if desc.Width > 0 {
		pairs = append(pairs, [2]string{"width", strconv.Itoa(desc.Width)})
	}
	if desc.Required {
		pairs = append(pairs, [2]string{"required", "yes"})
	}
	if flags := desc.Flags.Names(); len(flags) > 0 {
		pairs = append(pairs, [2]string{"flags", strings.Join(flags, ", ")})
	}
	if len(desc.Items) > 0 {
		items := make([]string, len(desc.Items))
		for i, it := range desc.Items {
			items[i] = it.Key + "=" + it.Label
		}
		pairs = append(pairs, [2]string{"items", strings.Join(items, ", ")})
	}
	if desc.ValidateRegexp != "" {
		pairs = append(pairs, [2]string{"regexp", desc.ValidateRegexp})
	}
	if desc.CallbackName != "" {
		pairs = append(pairs, [2]string{"callback", desc.CallbackName})
	}

	ui.KeyValue(cmd.OutOrStdout(), e.noColor, pairs...)
	return nil
}
