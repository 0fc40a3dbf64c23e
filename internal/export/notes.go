package export

import (
	"context"

	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/store"
)

// notesQuery orders names case-insensitively, as WebReplay lists them;
// names equal but for case keep a fixed binary order.
const notesQuery = `
	SELECT SafeName, SafeNote
	FROM SafeNotes
	WHERE IsDeleted = 0
	ORDER BY SafeName COLLATE NOCASE, SafeName
`

// NoteExporter exports safe notes as <note name="..."> elements.
type NoteExporter struct{}

func (NoteExporter) Element() string { return ElementNote }

func (NoteExporter) Export(ctx context.Context, q Querier, doc *document.Document) (int, error) {
	return exportRows(ctx, q, notesQuery, doc, noteElement)
}

func noteElement(row store.Row) (document.Element, error) {
	el := document.NewElement(ElementNote, row.Get("SafeNote"))
	el.Set("name", row.Get("SafeName"))
	return el, nil
}
