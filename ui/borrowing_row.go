package ui

import (
	"empower/api"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// BorrowingRow is one line of the borrowings table.
type BorrowingRow struct {
	app.Compo
	Borrowing api.Borrowing
	InFlight  bool
	Disabled  bool
	OnReturn  func(ctx app.Context, borrowingID int64)
}

func (r *BorrowingRow) Render() app.UI {
	b := r.Borrowing
	status, statusClass := loanStatus(b)

	return app.Tr().Class("table-row").Body(
		app.Td().Body(
			app.Div().Class("row-title").Text(b.Book.Title),
			app.Div().Class("row-sub").Text(b.Book.Author),
		),
		app.Td().Text(formatDate(b.BorrowDate)),
		app.Td().Text(formatDate(b.DueDate)),
		app.Td().Class(statusClass).Text(status),
		app.Td().Body(
			app.If(!b.Returned(),
				app.Button().Class("btn-m3-tonal").Disabled(r.InFlight || r.Disabled).
					OnClick(func(ctx app.Context, e app.Event) {
						if r.OnReturn != nil {
							r.OnReturn(ctx, b.ID)
						}
					}).
					Text(returnLabel(r.InFlight)),
			),
		),
	)
}
