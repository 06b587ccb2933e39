package catalog

import (
	"context"
	"sync"

	"empower/api"
	"empower/session"
)

type BorrowingListView struct {
	Borrowings []api.Borrowing
	Loading    bool
	Err        string
	Notice     string
	Failed     bool
	Returning  int64
}

// BorrowingList shows the signed-in user's loans and returns books.
type BorrowingList struct {
	client  *api.Client
	session *session.Manager

	mu         sync.Mutex
	borrowings []api.Borrowing
	loading    bool
	err        string
	notice     string
	failed     bool
	returning  int64
}

func NewBorrowingList(client *api.Client, sess *session.Manager) *BorrowingList {
	return &BorrowingList{client: client, session: sess, loading: true}
}

func (l *BorrowingList) View() BorrowingListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	borrowings := make([]api.Borrowing, len(l.borrowings))
	copy(borrowings, l.borrowings)
	return BorrowingListView{
		Borrowings: borrowings,
		Loading:    l.loading,
		Err:        l.err,
		Notice:     l.notice,
		Failed:     l.failed,
		Returning:  l.returning,
	}
}

// Load fetches the signed-in user's borrowings.
func (l *BorrowingList) Load(ctx context.Context) error {
	id, ok := l.session.Identity()
	if !ok {
		l.mu.Lock()
		l.loading = false
		l.err = "Failed to load borrowings"
		l.mu.Unlock()
		return ErrSignedOut
	}

	borrowings, err := l.client.Borrowings(ctx, id.ID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.err = "Failed to load borrowings"
		return err
	}
	l.borrowings = borrowings
	l.err = ""
	return nil
}

// Return hands back the book of borrowingID and refreshes the list.
func (l *BorrowingList) Return(ctx context.Context, borrowingID int64) error {
	l.mu.Lock()
	if l.returning != 0 {
		l.mu.Unlock()
		return ErrBusy
	}
	l.returning = borrowingID
	l.notice = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.returning = 0
		l.mu.Unlock()
	}()

	if _, err := l.client.Return(ctx, borrowingID); err != nil {
		l.setNotice("Failed to return book: "+api.Detail(err, "Unknown error"), true)
		return err
	}

	l.setNotice("Book returned successfully!", false)
	// A failed refresh shows up as the inline load error.
	l.Load(ctx)
	return nil
}

func (l *BorrowingList) DismissNotice() {
	l.setNotice("", false)
}

func (l *BorrowingList) setNotice(msg string, failed bool) {
	l.mu.Lock()
	l.notice = msg
	l.failed = failed
	l.mu.Unlock()
}
