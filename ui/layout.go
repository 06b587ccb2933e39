package ui

import (
	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// Layout is the page shell: navigation bar on top, page content below.
type Layout struct {
	app.Compo
	SignedIn bool
	Username string
	Active   string
	Content  []app.UI
	OnLogout func(app.Context, app.Event)
}

type navLink struct {
	path  string
	icon  string
	label string
}

var (
	memberLinks = []navLink{
		{"/books", "menu_book", "Browse Books"},
		{"/borrowings", "bookmarks", "My Books"},
	}
	guestLinks = []navLink{
		{"/login", "login", "Login"},
		{"/register", "person_add", "Register"},
	}
)

func (l *Layout) links() []navLink {
	if l.SignedIn {
		return memberLinks
	}
	return guestLinks
}

func (l *Layout) Render() app.UI {
	links := l.links()

	return app.Div().Class("app-layout").Body(
		app.Nav().Class("navbar").Body(
			app.A().Class("brand").Href("/").Body(
				app.Span().Class("material-symbols-rounded").Text("local_library"),
				app.Text("Empower Library"),
			),
			app.Ul().Class("nav-links").Body(
				app.Range(links).Slice(func(i int) app.UI {
					link := links[i]
					activeClass := ""
					if l.Active == link.path {
						activeClass = " active"
					}
					return app.Li().Class("nav-item"+activeClass).Body(
						app.A().Href(link.path).Body(
							app.Span().Class("material-symbols-rounded").Text(link.icon),
							app.Span().Text(link.label),
						),
					)
				}),
				app.If(l.SignedIn,
					app.Li().Class("nav-item nav-logout").
						OnClick(func(ctx app.Context, e app.Event) {
							if l.OnLogout != nil {
								e.PreventDefault()
								l.OnLogout(ctx, e)
							}
						}).
						Body(
							app.Span().Class("material-symbols-rounded").Text("logout"),
							app.Span().Text("Logout"),
						),
				),
			),
			app.If(l.SignedIn && l.Username != "",
				app.Span().Class("nav-user").Text(l.Username),
			),
		),
		app.Main().Class("main-content").Body(l.Content...),
	)
}
