package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/fieldmeta/internal/cli/ui"
	"github.com/conduit-lang/fieldmeta/internal/orm/lookup"
	"github.com/conduit-lang/fieldmeta/internal/orm/query"
)

type sqlOptions struct {
	filtersFile string
	filters     []string
	verify      bool
	table       string
	idColumn    string
	count       bool
}

// NewSQLCommand creates the sql command
func NewSQLCommand(opts *globalOptions) *cobra.Command {
	so := &sqlOptions{}

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Compile search filters into a WHERE clause",
		Long: `Compile filter values, keyed by field name, into the body of a SQL WHERE
clause for the configured dialect. Filters come from a JSON file, from
repeated --filter flags or both; flags win.

With --table and a configured database the clause is run and the matching
ids (or with --count their number) are printed instead.`,
		Example: `  fieldmeta sql --filter "tt_qty=>= 5" --filter tt_state=open
  fieldmeta sql --filters search.json --table tickets --count`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(cmd, opts, so)
		},
	}

	cmd.Flags().StringVarP(&so.filtersFile, "filters", "f", "", "JSON file of filter values (- for stdin)")
	cmd.Flags().StringArrayVar(&so.filters, "filter", nil, "filter as name=value (repeatable)")
	cmd.Flags().BoolVar(&so.verify, "verify", false, "parse the clause and list the columns it references (mysql)")
	cmd.Flags().StringVar(&so.table, "table", "", "run the clause against this table")
	cmd.Flags().StringVar(&so.idColumn, "id-column", "id", "id column returned with --table")
	cmd.Flags().BoolVar(&so.count, "count", false, "print the number of matching rows with --table")

	return cmd
}

func runSQL(cmd *cobra.Command, opts *globalOptions, so *sqlOptions) error {
	e, err := opts.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	filters := map[string]any{}
	if so.filtersFile != "" {
		if err := readJSON(cmd, so.filtersFile, &filters); err != nil {
			return err
		}
	}
	for _, f := range so.filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid filter %q, expected name=value", f)
		}
		filters[name] = value
	}

	if so.table != "" {
		return runSearch(cmd, e, so, filters)
	}

	compiler := query.NewCompiler(e.registry, e.locale,
		query.WithDialect(e.cfg.SQLDialect()),
		query.WithLogger(e.logger),
	)
	where, err := compiler.Filter(filters)
	if err != nil {
		return reportFilterError(cmd, e, err)
	}

	out := cmd.OutOrStdout()
	if where == "" {
		fmt.Fprintln(out, "-- no constraint")
		return nil
	}
	fmt.Fprintln(out, where)

	if so.verify {
		if compiler.Dialect() != query.MySQL {
			return fmt.Errorf("--verify parses mysql only, dialect is %s", compiler.Dialect().Name())
		}
		columns, err := query.Verify(where)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "-- columns: %s\n", strings.Join(columns, ", "))
	}
	return nil
}

func runSearch(cmd *cobra.Command, e *env, so *sqlOptions, filters map[string]any) error {
	if e.cfg.Database.Driver == "" {
		return fmt.Errorf("--table needs database.driver and database.url in the config")
	}

	store, err := lookup.Open(e.cfg.Database.Driver, e.cfg.Database.URL, lookup.WithLogger(e.logger))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	compiler := query.NewCompiler(e.registry, e.locale,
		query.WithDialect(store.Dialect()),
		query.WithLogger(e.logger),
	)

	out := cmd.OutOrStdout()
	if so.count {
		where, err := compiler.Filter(filters)
		if err != nil {
			return reportFilterError(cmd, e, err)
		}
		n, err := store.Count(ctx, so.table, where)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil
	}

	ids, err := store.Search(ctx, compiler, so.table, so.idColumn, filters)
	if err != nil {
		return reportFilterError(cmd, e, err)
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// reportFilterError prints rejected filters with suggestions for unknown
// field names. Other errors are returned as they are
func reportFilterError(cmd *cobra.Command, e *env, err error) error {
	var ferr *query.FilterError
	if !errors.As(err, &ferr) {
		return err
	}

	w := cmd.ErrOrStderr()
	for _, name := range ferr.Unknown {
		fmt.Fprint(w, ui.UnknownFieldError(name, e.registry.Names(), e.noColor))
	}
	for _, name := range ferr.Fields() {
		if cause, ok := ferr.Malformed[name]; ok {
			ui.WriteFailure(w, fmt.Sprintf("%s: %v", name, cause), e.noColor)
		}
	}
	return ErrInvalid
}
