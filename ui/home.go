package ui

import (
	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// Home is the landing page.
type Home struct {
	app.Compo
	SignedIn bool
	Username string

	env *env
}

func (h *Home) OnMount(ctx app.Context) {
	e, err := newEnv(ctx)
	if err != nil {
		return
	}
	h.env = e
	if id, ok := e.session.Identity(); ok && e.session.Authenticated() {
		h.SignedIn = true
		h.Username = id.Username
	}
}

func (h *Home) logout(ctx app.Context, e app.Event) {
	signOut(ctx, h.env)
}

func (h *Home) Render() app.UI {
	return &Layout{
		SignedIn: h.SignedIn,
		Username: h.Username,
		Active:   "/",
		OnLogout: h.logout,
		Content: []app.UI{
			app.Section().Class("hero").Body(
				app.H1().Class("hero-title").Text("Welcome to Empower Library"),
				app.P().Class("hero-subtitle").Text("Manage your library collection with ease"),
				app.Div().Class("hero-actions").Body(
					app.If(!h.SignedIn,
						app.A().Class("btn-m3-primary").Href("/register").Text("Create Account"),
						app.A().Class("btn-m3-outlined").Href("/login").Text("Login"),
					),
					app.A().Class("btn-m3-outlined").Href("/books").Text("Browse Books"),
				),
			),
		},
	}
}

// signOut clears the session and returns to the login page.
func signOut(ctx app.Context, e *env) {
	if e != nil {
		e.auth.SignOut()
	}
	ctx.Navigate("/login")
}
