package query

import (
	"fmt"
	"sort"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// Verify parses where as the WHERE clause of a MySQL query and returns the
// columns it references. Predicates compiled for other dialects may use
// syntax MySQL does not know
func Verify(where string) ([]string, error) {
	if where == "" {
		return nil, nil
	}

	stmt, err := sqlparser.Parse("select 1 from t where " + where)
	if err != nil {
		return nil, fmt.Errorf("parse predicate: %w", err)
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok || sel.Where == nil {
		return nil, fmt.Errorf("parse predicate: %q is not a condition", where)
	}

	seen := make(map[string]bool)
	err = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if col, ok := node.(*sqlparser.ColName); ok {
			seen[col.Name.Lowered()] = true
		}
		return true, nil
	}, sel.Where.Expr)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}
