package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Row is one result row with access by column name. NULL reads as "".
type Row struct {
	index  map[string]int
	values []string
}

// Get returns the value of the named column, or "" when the column is NULL or
// not part of the result. Lookup falls back to a case-insensitive match.
func (r Row) Get(column string) string {
	if i, ok := r.index[column]; ok {
		return r.values[i]
	}
	if i, ok := r.index[strings.ToLower(column)]; ok {
		return r.values[i]
	}
	return ""
}

// Has reports whether the result carries the named column.
func (r Row) Has(column string) bool {
	_, ok := r.index[column]
	if !ok {
		_, ok = r.index[strings.ToLower(column)]
	}
	return ok
}

// Rows iterates a query result as Rows.
type Rows struct {
	rows    *sql.Rows
	columns []string
	index   map[string]int
	scratch []sql.NullString
	current Row
	err     error
}

func newRows(rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}

	index := make(map[string]int, 2*len(columns))
	for i, c := range columns {
		index[c] = i
		lower := strings.ToLower(c)
		if _, dup := index[lower]; !dup {
			index[lower] = i
		}
	}

	return &Rows{
		rows:    rows,
		columns: columns,
		index:   index,
		scratch: make([]sql.NullString, len(columns)),
	}, nil
}

// Columns returns the result's column names in select order.
func (r *Rows) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Next advances to the next row. It returns false at the end of the result
// or on error; check Err afterwards.
func (r *Rows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	dest := make([]any, len(r.scratch))
	for i := range r.scratch {
		dest[i] = &r.scratch[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = fmt.Errorf("scan row: %w", err)
		return false
	}

	values := make([]string, len(r.scratch))
	for i, v := range r.scratch {
		if v.Valid {
			values[i] = v.String
		}
	}
	r.current = Row{index: r.index, values: values}
	return true
}

// Row returns the row Next advanced to.
func (r *Rows) Row() Row {
	return r.current
}

// Err returns the first error hit while iterating.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close releases the result set.
func (r *Rows) Close() error {
	return r.rows.Close()
}
