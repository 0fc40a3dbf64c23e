package export

import (
	"context"

	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/store"
)

// loginsQuery selects one row per distinct login/site combination. It has no
// ORDER BY: login order is whatever the store returns.
const loginsQuery = `
	SELECT DISTINCT L.LoginName, LS.SiteFullName, L.Note,
		L.UserName1, L.UserName2, L.Password1, L.Password2,
		LS.UserDesc1, LS.UserDesc2, LS.PasswordDesc1, LS.PasswordDesc2
	FROM LoginSites AS LS
	INNER JOIN Logins AS L ON LS.LoginID = L.LoginID
	WHERE L.IsDeleted = 0
`

// loginAttrs maps login attributes to their source columns, in output order.
var loginAttrs = []struct {
	attr   string
	column string
}{
	{"name", "LoginName"},
	{"site", "SiteFullName"},
	{"user", "UserName1"},
	{"password", "Password1"},
	{"user2", "UserName2"},
	{"password2", "Password2"},
	{"user1RuntimeID", "UserDesc1"},
	{"pwd1RuntimeID", "PasswordDesc1"},
	{"user2RuntimeID", "UserDesc2"},
	{"pwd2RuntimeID", "PasswordDesc2"},
}

// LoginExporter exports saved credentials as <login> elements whose body is
// the login's note.
type LoginExporter struct{}

func (LoginExporter) Element() string { return ElementLogin }

func (LoginExporter) Export(ctx context.Context, q Querier, doc *document.Document) (int, error) {
	return exportRows(ctx, q, loginsQuery, doc, loginElement)
}

func loginElement(row store.Row) (document.Element, error) {
	el := document.NewElement(ElementLogin, row.Get("Note"))
	for _, a := range loginAttrs {
		el.Set(a.attr, row.Get(a.column))
	}
	return el, nil
}
