package ui

import "github.com/maxence-charriere/go-app/v9/pkg/app"

// Routes registers the pages. The browser build and the server that
// prerenders them must register the same set.
func Routes() {
	app.Route("/", &Home{})
	app.Route("/login", &LoginPage{})
	app.Route("/register", &RegisterPage{})
	app.Route("/books", &BooksPage{})
	app.Route("/borrowings", &BorrowingsPage{})
}
