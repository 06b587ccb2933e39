// Package devapi is a development implementation of the library REST API
// the front end talks to. It backs local runs and end-to-end tests.
package devapi

import (
	"context"
	"errors"
	"time"

	"empower/api"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrUnavailable     = errors.New("book is not available")
	ErrAlreadyReturned = errors.New("book already returned")
	ErrForbidden       = errors.New("forbidden")
)

// Account is a user together with its password hash.
type Account struct {
	api.User
	PasswordHash string
}

type Store interface {
	CreateUser(ctx context.Context, acct Account) (api.User, error)
	UserByEmail(ctx context.Context, email string) (Account, error)
	UserByID(ctx context.Context, id int64) (api.User, error)

	AddBook(ctx context.Context, b api.Book) (api.Book, error)
	Books(ctx context.Context) ([]api.Book, error)

	// Borrow marks the book unavailable and records the loan.
	Borrow(ctx context.Context, userID, bookID int64, borrowed, due time.Time) (api.Borrowing, error)
	Borrowings(ctx context.Context, userID int64) ([]api.Borrowing, error)
	// Return closes the loan if it belongs to userID and makes the book
	// available again.
	Return(ctx context.Context, borrowingID, userID int64, returned time.Time) (api.Borrowing, error)

	Close() error
}

// Seed adds the starter catalogue when the store has no books.
func Seed(ctx context.Context, s Store) error {
	books, err := s.Books(ctx)
	if err != nil {
		return err
	}
	if len(books) > 0 {
		return nil
	}
	for _, b := range starterBooks {
		if _, err := s.AddBook(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

var starterBooks = []api.Book{
	{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", ISBN: "9780134190440", PublishedYear: 2015, IsAvailable: true},
	{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", ISBN: "9781449373320", PublishedYear: 2017, IsAvailable: true},
	{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "9780201616224", PublishedYear: 1999, IsAvailable: true},
	{Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson", ISBN: "9780262510875", PublishedYear: 1996, IsAvailable: true},
	{Title: "A Philosophy of Software Design", Author: "John Ousterhout", ISBN: "9781732102200", PublishedYear: 2018, IsAvailable: true},
	{Title: "Refactoring", Author: "Martin Fowler", ISBN: "9780134757599", PublishedYear: 2018, IsAvailable: true},
}
