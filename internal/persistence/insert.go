// Package persistence contains helpers shared by the SQL sink implementations.
package persistence

import (
	"strconv"
	"strings"
)

// Placeholder renders the bind marker for the n-th (1-based) parameter.
type Placeholder func(n int) string

// Dollar renders Postgres-style $n markers.
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question renders SQLite-style ? markers.
func Question(int) string { return "?" }

// Insert describes a multi-row INSERT into one table.
type Insert struct {
	Verb        string // e.g. "INSERT" or "INSERT OR IGNORE"
	Table       string
	Columns     []string
	Suffix      string // e.g. "ON CONFLICT (record_hash) DO NOTHING"
	Placeholder Placeholder
}

// RowsPerStatement returns how many rows fit in one statement given the driver's
// bind parameter limit.
func (ins Insert) RowsPerStatement(maxParams int) int {
	n := maxParams / len(ins.Columns)
	if n < 1 {
		return 1
	}
	return n
}

// SQL renders the statement for rows rows.
func (ins Insert) SQL(rows int) string {
	verb := ins.Verb
	if verb == "" {
		verb = "INSERT"
	}
	var b strings.Builder
	b.WriteString(verb)
	b.WriteString(" INTO ")
	b.WriteString(ins.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(ins.Columns, ", "))
	b.WriteString(") VALUES ")
	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for c := range ins.Columns {
			if c > 0 {
				b.WriteString(",")
			}
			b.WriteString(ins.Placeholder(param))
			param++
		}
		b.WriteString(")")
	}
	if ins.Suffix != "" {
		b.WriteString(" ")
		b.WriteString(ins.Suffix)
	}
	return b.String()
}

// Valuer is implemented by row types that bind positionally to Insert.Columns.
type Valuer interface {
	Values() []any
}

// Chunks splits rows into statement-sized groups and flattens each group's values.
func Chunks[T Valuer](rows []T, perStatement int) [][]any {
	var out [][]any
	for start := 0; start < len(rows); start += perStatement {
		end := min(start+perStatement, len(rows))
		first := rows[start].Values()
		args := make([]any, 0, (end-start)*len(first))
		args = append(args, first...)
		for _, row := range rows[start+1 : end] {
			args = append(args, row.Values()...)
		}
		out = append(out, args)
	}
	return out
}
