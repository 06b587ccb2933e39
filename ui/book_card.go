package ui

import (
	"fmt"

	"empower/api"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// BookCard renders one catalogue entry with its borrow action.
type BookCard struct {
	app.Compo
	Book     api.Book
	InFlight bool
	Disabled bool
	OnBorrow func(app.Context, int64)
}

func (c *BookCard) Render() app.UI {
	label, badgeClass := availability(c.Book)
	disabled := !c.Book.IsAvailable || c.InFlight || c.Disabled

	return app.Div().Class("book-card").Body(
		app.Div().Class("book-card-icon").Body(
			app.Span().Class("material-symbols-rounded").Text("book_2"),
		),
		app.H3().Class("book-title").Text(c.Book.Title),
		app.Div().Class("book-author").Text("By: "+c.Book.Author),
		app.If(c.Book.PublishedYear != 0,
			app.Div().Class("book-meta").Text(fmt.Sprintf("Published: %d", c.Book.PublishedYear)),
		),
		app.If(c.Book.ISBN != "",
			app.Div().Class("book-meta").Text("ISBN: "+c.Book.ISBN),
		),
		app.Span().Class(badgeClass).Text(label),
		app.Button().Class("btn-m3-primary").Disabled(disabled).
			OnClick(func(ctx app.Context, e app.Event) {
				if c.OnBorrow != nil {
					c.OnBorrow(ctx, c.Book.ID)
				}
			}).
			Text(borrowLabel(c.InFlight)),
	)
}
