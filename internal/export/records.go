package export

import (
	"context"
	"fmt"

	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/store"
)

// Element names of exported records.
const (
	ElementLogin    = "login"
	ElementNote     = "note"
	ElementBookmark = "bookmark"
)

// Querier runs a read-only query with named-column rows.
// *store.Store implements it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*store.Rows, error)
}

// RecordExporter maps the rows of one query to document elements.
type RecordExporter interface {
	// Element is the name of the elements this exporter appends.
	Element() string

	// Export runs the query and appends one element per row to doc, in
	// result order. It returns the number of rows handled.
	Export(ctx context.Context, q Querier, doc *document.Document) (int, error)
}

// rowMapper builds the element for one row.
type rowMapper func(row store.Row) (document.Element, error)

// exportRows is the loop every exporter shares. Elements appended before a
// failing row stay in doc; the orchestrator discards doc on any error.
func exportRows(ctx context.Context, q Querier, query string, doc *document.Document, mapRow rowMapper) (int, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		el, err := mapRow(rows.Row())
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}
		doc.Append(el)
		count++
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate rows: %w", err)
	}
	return count, nil
}
