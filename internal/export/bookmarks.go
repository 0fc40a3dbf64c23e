package export

import (
	"context"

	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/fragment"
	"github.com/roach88/wrexpt/internal/store"
)

// bookmarksQuery selects bookmark tasks; WebReplay flags them with 4.
const bookmarksQuery = `
	SELECT TaskName, Script
	FROM Tasks
	WHERE IsDeleted = 0 AND Flags = 4
	ORDER BY TaskName COLLATE NOCASE, TaskName
`

// BookmarkExporter exports bookmark tasks as <bookmark url="..."> elements.
// The address lives in the task's Script fragment.
type BookmarkExporter struct{}

func (BookmarkExporter) Element() string { return ElementBookmark }

func (BookmarkExporter) Export(ctx context.Context, q Querier, doc *document.Document) (int, error) {
	return exportRows(ctx, q, bookmarksQuery, doc, bookmarkElement)
}

func bookmarkElement(row store.Row) (document.Element, error) {
	url, err := fragment.DecodeURL(row.Get("Script"))
	if err != nil {
		return document.Element{}, err
	}
	el := document.NewElement(ElementBookmark, row.Get("TaskName"))
	el.Set("url", url)
	return el, nil
}
