package ui

import "github.com/maxence-charriere/go-app/v9/pkg/app"

// BookSkeleton is the placeholder grid shown while the catalogue loads.
type BookSkeleton struct {
	app.Compo
	Count int
}

func (s *BookSkeleton) Render() app.UI {
	n := s.Count
	if n <= 0 {
		n = 6
	}
	cards := make([]int, n)

	return app.Div().Class("book-grid").Body(
		app.Range(cards).Slice(func(i int) app.UI {
			return app.Div().Class("book-card skeleton").Body(
				app.Div().Class("skeleton-line skeleton-title"),
				app.Div().Class("skeleton-line"),
				app.Div().Class("skeleton-line skeleton-short"),
				app.Div().Class("skeleton-button"),
			)
		}),
	)
}

// Loader is the spinner shown while a page works out whether a session
// exists.
type Loader struct {
	app.Compo
	Label string
}

func (l *Loader) Render() app.UI {
	return app.Div().Class("loader-container").Body(
		app.Div().Class("spinner").Body(
			app.Div().Class("double-bounce1"),
			app.Div().Class("double-bounce2"),
		),
		app.If(l.Label != "",
			app.Div().Class("loader-text").Text(l.Label),
		),
	)
}
