package ui

import (
	"context"

	"empower/auth"
	"empower/catalog"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// BooksPage lists the catalogue and lets the signed-in user borrow.
type BooksPage struct {
	app.Compo
	View     catalog.BookListView
	Username string
	Ready    bool

	env  *env
	list *catalog.BookList
}

func (p *BooksPage) OnMount(ctx app.Context) {
	// Prerendered pages have no browser session.
	if app.IsServer {
		return
	}
	e, err := newEnv(ctx)
	if err != nil {
		p.View = catalog.BookListView{Err: "Failed to load books"}
		return
	}
	p.env = e
	if !auth.Guard(e.session, ctx.Navigate) {
		return
	}
	if id, ok := e.session.Identity(); ok {
		p.Username = id.Username
	}

	p.list = catalog.NewBookList(e.client, e.session)
	p.View = p.list.View()
	p.Ready = true
	p.load(ctx)
}

func (p *BooksPage) load(ctx app.Context) {
	go func() {
		if err := p.list.Load(context.Background()); err != nil {
			app.Logf("books: %v", err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			p.View = p.list.View()
			p.Update()
		})
	}()
}

func (p *BooksPage) borrow(ctx app.Context, bookID int64) {
	if p.list == nil || p.View.Borrowing != 0 {
		return
	}
	p.View.Borrowing = bookID
	p.View.Notice = ""
	p.Update()

	go func() {
		if err := p.list.Borrow(context.Background(), bookID); err != nil {
			app.Logf("borrow %d: %v", bookID, err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			p.View = p.list.View()
			p.Update()
		})
	}()
}

func (p *BooksPage) dismiss(ctx app.Context, e app.Event) {
	if p.list != nil {
		p.list.DismissNotice()
		p.View = p.list.View()
	}
	p.Update()
}

func (p *BooksPage) logout(ctx app.Context, e app.Event) {
	signOut(ctx, p.env)
}

func (p *BooksPage) Render() app.UI {
	v := p.View

	return &Layout{
		SignedIn: p.Ready,
		Username: p.Username,
		Active:   "/books",
		OnLogout: p.logout,
		Content: []app.UI{
			app.Div().Class("top-bar").Body(
				app.H1().Class("page-title").Text("Library Books"),
				app.A().Class("btn-m3-primary").Href("/borrowings").Text("My Borrowings"),
			),
			noticeBanner(v.Notice, v.Failed, p.dismiss),
			app.If(v.Err != "",
				app.Div().Class("auth-error").Text(v.Err),
			),
			app.If(!p.Ready && v.Err == "",
				&Loader{},
			).ElseIf(v.Loading,
				&BookSkeleton{Count: 6},
			).ElseIf(len(v.Books) == 0,
				app.Div().Class("empty-state").Text("No books found in the library."),
			).Else(
				app.Div().Class("book-grid").Body(
					app.Range(v.Books).Slice(func(i int) app.UI {
						return &BookCard{
							Book:     v.Books[i],
							InFlight: v.Borrowing == v.Books[i].ID,
							Disabled: v.Borrowing != 0,
							OnBorrow: p.borrow,
						}
					}),
				),
			),
		},
	}
}

// noticeBanner shows the outcome of the last borrow or return.
func noticeBanner(msg string, failed bool, onDismiss app.EventHandler) app.UI {
	class := "notice notice-success"
	icon := "check_circle"
	if failed {
		class = "notice notice-error"
		icon = "error"
	}
	return app.If(msg != "",
		app.Div().Class(class).Body(
			app.Span().Class("material-symbols-rounded").Text(icon),
			app.Span().Text(msg),
			app.Button().Class("btn-icon").Title("Dismiss").OnClick(onDismiss).Body(
				app.Span().Class("material-symbols-rounded").Text("close"),
			),
		),
	)
}
