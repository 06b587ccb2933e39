package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"empower/api"
	"empower/auth"
	"empower/devapi"
	"empower/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedInAgainstDevAPI signs a fresh user up against an in-memory
// development API and returns the client and session.
func signedInAgainstDevAPI(t *testing.T) (*api.Client, *session.Manager) {
	t.Helper()
	ctx := context.Background()

	store := devapi.NewMemoryStore()
	require.NoError(t, devapi.Seed(ctx, store))
	srv := httptest.NewServer(devapi.NewServer(store, devapi.Options{Secret: []byte("catalog-test")}))
	t.Cleanup(srv.Close)

	sess := session.NewManager(session.NewMemoryStorage())
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)

	_, err = auth.NewService(client, sess).SignUp(ctx, api.RegisterRequest{
		Username: "frank",
		Email:    "frank@example.com",
		Password: "pa55word",
		FullName: "Frank",
	})
	require.NoError(t, err)
	return client, sess
}

func TestBorrowThenReturn(t *testing.T) {
	client, sess := signedInAgainstDevAPI(t)
	ctx := context.Background()

	books := NewBookList(client, sess)
	require.NoError(t, books.Load(ctx))
	first := books.View().Books[0]
	require.True(t, first.IsAvailable)

	require.NoError(t, books.Borrow(ctx, first.ID))
	assert.False(t, books.View().Books[0].IsAvailable)

	loans := NewBorrowingList(client, sess)
	require.NoError(t, loans.Load(ctx))
	v := loans.View()
	require.Len(t, v.Borrowings, 1)
	assert.Equal(t, first.Title, v.Borrowings[0].Book.Title)
	assert.False(t, v.Borrowings[0].Returned())

	require.NoError(t, loans.Return(ctx, v.Borrowings[0].ID))
	v = loans.View()
	assert.Equal(t, "Book returned successfully!", v.Notice)
	assert.True(t, v.Borrowings[0].Returned())
	assert.Zero(t, v.Returning)

	require.NoError(t, books.Load(ctx))
	assert.True(t, books.View().Books[0].IsAvailable)
}

func TestReturnTwiceShowsServerDetail(t *testing.T) {
	client, sess := signedInAgainstDevAPI(t)
	ctx := context.Background()

	books := NewBookList(client, sess)
	require.NoError(t, books.Load(ctx))
	require.NoError(t, books.Borrow(ctx, books.View().Books[0].ID))

	loans := NewBorrowingList(client, sess)
	require.NoError(t, loans.Load(ctx))
	id := loans.View().Borrowings[0].ID
	require.NoError(t, loans.Return(ctx, id))

	require.Error(t, loans.Return(ctx, id))
	v := loans.View()
	assert.True(t, v.Failed)
	assert.Equal(t, "Failed to return book: Book already returned", v.Notice)
	assert.Len(t, v.Borrowings, 1)
}

func TestBorrowingsSignedOut(t *testing.T) {
	client, sess := signedInAgainstDevAPI(t)
	sess.Logout()

	loans := NewBorrowingList(client, sess)
	assert.ErrorIs(t, loans.Load(context.Background()), ErrSignedOut)
	assert.Equal(t, "Failed to load borrowings", loans.View().Err)
}

func TestDismissNotice(t *testing.T) {
	client, sess := signedInAgainstDevAPI(t)
	ctx := context.Background()

	books := NewBookList(client, sess)
	require.NoError(t, books.Load(ctx))
	require.NoError(t, books.Borrow(ctx, books.View().Books[0].ID))
	require.NotEmpty(t, books.View().Notice)

	books.DismissNotice()
	assert.Empty(t, books.View().Notice)
}

func TestReturnSucceedsWhenRefreshFails(t *testing.T) {
	var mu sync.Mutex
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/users/4/borrowings":
			fetches++
			if fetches > 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`[{"id":5,"user_id":4,"book_id":1,"book":{"id":1,"title":"Emma","author":"Jane Austen"}}]`))
		case "/return":
			w.Write([]byte(`{"id":5}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	sess := session.NewManager(session.NewMemoryStorage())
	require.NoError(t, sess.Login("tok", reader))
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)

	loans := NewBorrowingList(client, sess)
	ctx := context.Background()
	require.NoError(t, loans.Load(ctx))
	require.NoError(t, loans.Return(ctx, 5))

	v := loans.View()
	assert.False(t, v.Failed)
	assert.Equal(t, "Book returned successfully!", v.Notice)
	assert.Equal(t, "Failed to load borrowings", v.Err)
	assert.Len(t, v.Borrowings, 1)
	assert.Zero(t, v.Returning)
}
