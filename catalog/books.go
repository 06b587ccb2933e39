// Package catalog holds the view state behind the book listing and the
// borrowings page.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"empower/api"
	"empower/session"
)

// LoanPeriod is how long a borrowed book may be kept.
const LoanPeriod = 14 * 24 * time.Hour

var (
	// ErrBusy is returned when an action is already in flight.
	ErrBusy = errors.New("catalog: another request is in flight")
	// ErrSignedOut is returned when an action needs the signed-in user.
	ErrSignedOut = errors.New("catalog: not signed in")
)

type BookListView struct {
	Books     []api.Book
	Loading   bool
	Err       string
	Notice    string
	Failed    bool
	Borrowing int64
}

// BookList loads the catalogue and borrows books on behalf of the
// signed-in user.
type BookList struct {
	client  *api.Client
	session *session.Manager
	now     func() time.Time

	mu        sync.Mutex
	books     []api.Book
	loading   bool
	err       string
	notice    string
	failed    bool
	borrowing int64
}

func NewBookList(client *api.Client, sess *session.Manager) *BookList {
	return &BookList{
		client:  client,
		session: sess,
		now:     time.Now,
		loading: true,
	}
}

func (l *BookList) View() BookListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	books := make([]api.Book, len(l.books))
	copy(books, l.books)
	return BookListView{
		Books:     books,
		Loading:   l.loading,
		Err:       l.err,
		Notice:    l.notice,
		Failed:    l.failed,
		Borrowing: l.borrowing,
	}
}

// Load fetches the catalogue. On failure the current list is kept and an
// inline error is set.
func (l *BookList) Load(ctx context.Context) error {
	books, err := l.client.Books(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.err = "Failed to load books"
		return err
	}
	l.books = books
	l.err = ""
	return nil
}

// Borrow borrows bookID for the signed-in user and refreshes the list.
// A rejected borrow leaves the list untouched.
func (l *BookList) Borrow(ctx context.Context, bookID int64) error {
	id, ok := l.session.Identity()
	if !ok {
		return ErrSignedOut
	}

	l.mu.Lock()
	if l.borrowing != 0 {
		l.mu.Unlock()
		return ErrBusy
	}
	l.borrowing = bookID
	l.notice = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.borrowing = 0
		l.mu.Unlock()
	}()

	_, err := l.client.Borrow(ctx, api.BorrowRequest{
		BookID:  bookID,
		UserID:  id.ID,
		DueDate: api.NewTime(l.now().Add(LoanPeriod)),
	})
	if err != nil {
		l.setNotice("Failed to borrow book: "+api.Detail(err, "Unknown error"), true)
		return err
	}

	l.setNotice("Book borrowed successfully!", false)
	// A failed refresh shows up as the inline load error.
	l.Load(ctx)
	return nil
}

// DismissNotice clears the last action notice.
func (l *BookList) DismissNotice() {
	l.setNotice("", false)
}

func (l *BookList) setNotice(msg string, failed bool) {
	l.mu.Lock()
	l.notice = msg
	l.failed = failed
	l.mu.Unlock()
}
