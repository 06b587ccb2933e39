package devapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"empower/api"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu         sync.Mutex
	accounts   []Account
	books      []api.Book
	borrowings []api.Borrowing
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateUser(ctx context.Context, acct Account) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, acct.Email) || a.Username == acct.Username {
			return api.User{}, ErrConflict
		}
	}
	acct.ID = int64(len(s.accounts) + 1)
	acct.IsActive = true
	s.accounts = append(s.accounts, acct)
	return acct.User, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *MemoryStore) UserByID(ctx context.Context, id int64) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.ID == id {
			return a.User, nil
		}
	}
	return api.User{}, ErrNotFound
}

func (s *MemoryStore) AddBook(ctx context.Context, b api.Book) (api.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = int64(len(s.books) + 1)
	s.books = append(s.books, b)
	return b, nil
}

func (s *MemoryStore) Books(ctx context.Context) ([]api.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *MemoryStore) Borrow(ctx context.Context, userID, bookID int64, borrowed, due time.Time) (api.Borrowing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.book(bookID)
	if book == nil {
		return api.Borrowing{}, ErrNotFound
	}
	if !book.IsAvailable {
		return api.Borrowing{}, ErrUnavailable
	}
	book.IsAvailable = false

	b := api.Borrowing{
		ID:         int64(len(s.borrowings) + 1),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: api.NewTime(borrowed),
		DueDate:    api.NewTime(due),
		Book:       api.BookRef{ID: book.ID, Title: book.Title, Author: book.Author},
	}
	s.borrowings = append(s.borrowings, b)
	return b, nil
}

func (s *MemoryStore) Borrowings(ctx context.Context, userID int64) ([]api.Borrowing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.Borrowing{}
	for _, b := range s.borrowings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) Return(ctx context.Context, borrowingID, userID int64, returned time.Time) (api.Borrowing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.borrowings {
		b := &s.borrowings[i]
		if b.ID != borrowingID {
			continue
		}
		if b.UserID != userID {
			return api.Borrowing{}, ErrForbidden
		}
		if b.Returned() {
			return api.Borrowing{}, ErrAlreadyReturned
		}
		rt := api.NewTime(returned)
		b.ReturnDate = &rt
		if book := s.book(b.BookID); book != nil {
			book.IsAvailable = true
		}
		return *b, nil
	}
	return api.Borrowing{}, ErrNotFound
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) book(id int64) *api.Book {
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i]
		}
	}
	return nil
}
