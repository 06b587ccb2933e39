package ui

import (
	"context"

	"empower/auth"
	"empower/catalog"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// BorrowingsPage shows the signed-in user's borrowings.
type BorrowingsPage struct {
	app.Compo
	View     catalog.BorrowingListView
	Username string
	Ready    bool

	env  *env
	list *catalog.BorrowingList
}

func (p *BorrowingsPage) OnMount(ctx app.Context) {
	// Prerendered pages have no browser session.
	if app.IsServer {
		return
	}
	e, err := newEnv(ctx)
	if err != nil {
		p.View = catalog.BorrowingListView{Err: "Failed to load borrowings"}
		return
	}
	p.env = e
	if !auth.Guard(e.session, ctx.Navigate) {
		return
	}
	if id, ok := e.session.Identity(); ok {
		p.Username = id.Username
	}

	p.list = catalog.NewBorrowingList(e.client, e.session)
	p.View = p.list.View()
	p.Ready = true
	p.loadBorrowings(ctx)
}

func (p *BorrowingsPage) loadBorrowings(ctx app.Context) {
	go func() {
		if err := p.list.Load(context.Background()); err != nil {
			app.Logf("borrowings: %v", err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			p.View = p.list.View()
			p.Update()
		})
	}()
}

func (p *BorrowingsPage) returnBook(ctx app.Context, borrowingID int64) {
	if p.list == nil || p.View.Returning != 0 {
		return
	}
	p.View.Returning = borrowingID
	p.View.Notice = ""
	p.Update()

	go func() {
		if err := p.list.Return(context.Background(), borrowingID); err != nil {
			app.Logf("return %d: %v", borrowingID, err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			p.View = p.list.View()
			p.Update()
		})
	}()
}

func (p *BorrowingsPage) dismiss(ctx app.Context, e app.Event) {
	if p.list != nil {
		p.list.DismissNotice()
		p.View = p.list.View()
	}
	p.Update()
}

func (p *BorrowingsPage) logout(ctx app.Context, e app.Event) {
	signOut(ctx, p.env)
}

func (p *BorrowingsPage) Render() app.UI {
	v := p.View

	return &Layout{
		SignedIn: p.Ready,
		Username: p.Username,
		Active:   "/borrowings",
		OnLogout: p.logout,
		Content: []app.UI{
			app.Div().Class("top-bar").Body(
				app.Div().Body(
					app.H1().Class("page-title").Text("My Borrowings"),
					app.Span().Class("page-subtitle").Text("Books you have borrowed and their due dates"),
				),
			),
			noticeBanner(v.Notice, v.Failed, p.dismiss),
			app.If(v.Err != "",
				app.Div().Class("auth-error").Text(v.Err),
			),
			app.If(!p.Ready && v.Err == "",
				&Loader{},
			).ElseIf(v.Loading,
				&Loader{Label: "Loading borrowings..."},
			).ElseIf(len(v.Borrowings) == 0,
				app.Div().Class("empty-state").Text("You haven't borrowed any books yet."),
			).Else(
				app.Div().Class("table-panel").Body(
					app.Table().Body(
						app.THead().Body(
							app.Tr().Body(
								app.Th().Text("Book"),
								app.Th().Style("width", "140px").Text("Borrowed"),
								app.Th().Style("width", "140px").Text("Due"),
								app.Th().Style("width", "160px").Text("Status"),
								app.Th().Style("width", "140px"),
							),
						),
						app.TBody().Body(
							app.Range(v.Borrowings).Slice(func(i int) app.UI {
								return &BorrowingRow{
									Borrowing: v.Borrowings[i],
									InFlight:  v.Returning == v.Borrowings[i].ID,
									Disabled:  v.Returning != 0,
									OnReturn:  p.returnBook,
								}
							}),
						),
					),
				),
			),
		},
	}
}
