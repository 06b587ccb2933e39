package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"empower/api"
	"empower/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reader = session.Identity{ID: 4, Username: "reader", Email: "reader@example.com"}

// fakeLibrary is a scripted library API.
type fakeLibrary struct {
	mu         sync.Mutex
	books      []api.Book
	bookFetch  int
	borrowFail string
	borrowBody map[string]any
	// booksDown makes every /books fetch after the first one fail.
	booksDown bool
}

func (f *fakeLibrary) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/books":
		f.bookFetch++
		if f.booksDown && f.bookFetch > 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(f.books)
	case "/borrow":
		json.NewDecoder(r.Body).Decode(&f.borrowBody)
		if f.borrowFail != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": f.borrowFail})
			return
		}
		id := int64(f.borrowBody["book_id"].(float64))
		for i := range f.books {
			if f.books[i].ID == id {
				f.books[i].IsAvailable = false
			}
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeLibrary) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookFetch
}

func newBookList(t *testing.T, h http.Handler, signedIn bool) *BookList {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sess := session.NewManager(session.NewMemoryStorage())
	if signedIn {
		require.NoError(t, sess.Login("tok", reader))
	}
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)
	return NewBookList(client, sess)
}

func threeBooks() []api.Book {
	return []api.Book{
		{ID: 3, Title: "Dune", Author: "Frank Herbert", IsAvailable: true},
		{ID: 1, Title: "Emma", Author: "Jane Austen", IsAvailable: true},
		{ID: 2, Title: "Ulysses", Author: "James Joyce", IsAvailable: false},
	}
}

func TestLoadKeepsServerOrder(t *testing.T) {
	lib := &fakeLibrary{books: threeBooks()}
	l := newBookList(t, lib, true)
	assert.True(t, l.View().Loading)

	require.NoError(t, l.Load(context.Background()))

	v := l.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Err)
	assert.Equal(t, threeBooks(), v.Books)
}

func TestLoadFailureLeavesListEmpty(t *testing.T) {
	l := newBookList(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), true)

	require.Error(t, l.Load(context.Background()))

	v := l.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Books)
	assert.Equal(t, "Failed to load books", v.Err)
}

func TestBorrowRejectedLeavesAvailability(t *testing.T) {
	lib := &fakeLibrary{books: threeBooks(), borrowFail: "Book is not available"}
	l := newBookList(t, lib, true)
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))
	before := l.View().Books

	err := l.Borrow(ctx, 3)
	require.Error(t, err)

	v := l.View()
	assert.Equal(t, before, v.Books)
	assert.True(t, v.Failed)
	assert.Equal(t, "Failed to borrow book: Book is not available", v.Notice)
	assert.Zero(t, v.Borrowing)
	assert.Equal(t, 1, lib.fetches())
}

func TestBorrowSuccessRefetches(t *testing.T) {
	lib := &fakeLibrary{books: threeBooks()}
	l := newBookList(t, lib, true)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	require.NoError(t, l.Borrow(ctx, 3))

	assert.Equal(t, 2, lib.fetches())
	v := l.View()
	assert.False(t, v.Failed)
	assert.Equal(t, "Book borrowed successfully!", v.Notice)
	require.Len(t, v.Books, 3)
	assert.False(t, v.Books[0].IsAvailable)
	assert.True(t, v.Books[1].IsAvailable)

	assert.EqualValues(t, 3, lib.borrowBody["book_id"])
	assert.EqualValues(t, reader.ID, lib.borrowBody["user_id"])
	assert.Equal(t, "2026-11-02T12:00:00Z", lib.borrowBody["due_date"])
}

func TestBorrowRequiresIdentity(t *testing.T) {
	lib := &fakeLibrary{books: threeBooks()}
	l := newBookList(t, lib, false)

	assert.ErrorIs(t, l.Borrow(context.Background(), 3), ErrSignedOut)
	assert.Nil(t, lib.borrowBody)
}

func TestBorrowWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/borrow" {
			close(entered)
			<-release
			w.Write([]byte(`{"id":9}`))
			return
		}
		w.Write([]byte(`[]`))
	})
	l := newBookList(t, h, true)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- l.Borrow(ctx, 1) }()
	<-entered

	assert.Equal(t, int64(1), l.View().Borrowing)
	assert.ErrorIs(t, l.Borrow(ctx, 2), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, l.View().Borrowing)
}

func TestBorrowSucceedsWhenRefreshFails(t *testing.T) {
	lib := &fakeLibrary{books: threeBooks(), booksDown: true}
	l := newBookList(t, lib, true)
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	require.NoError(t, l.Borrow(ctx, 3))

	v := l.View()
	assert.Equal(t, 2, lib.fetches())
	assert.False(t, v.Failed)
	assert.Equal(t, "Book borrowed successfully!", v.Notice)
	assert.Equal(t, "Failed to load books", v.Err)
	assert.Equal(t, threeBooks(), v.Books)
}
