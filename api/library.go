package api

import (
	"context"
	"fmt"
)

func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	return post[TokenResponse](ctx, c, "/login", req)
}

// Register creates an account and returns the created user record.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	return post[User](ctx, c, "/register", req)
}

// Me returns the user the current credential belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	return get[User](ctx, c, "/users/me")
}

func (c *Client) Books(ctx context.Context) ([]Book, error) {
	books, err := get[[]Book](ctx, c, "/books")
	if books == nil && err == nil {
		books = []Book{}
	}
	return books, err
}

func (c *Client) Borrow(ctx context.Context, req BorrowRequest) (Borrowing, error) {
	return post[Borrowing](ctx, c, "/borrow", req)
}

func (c *Client) Borrowings(ctx context.Context, userID int64) ([]Borrowing, error) {
	borrowings, err := get[[]Borrowing](ctx, c, fmt.Sprintf("/users/%d/borrowings", userID))
	if borrowings == nil && err == nil {
		borrowings = []Borrowing{}
	}
	return borrowings, err
}

func (c *Client) Return(ctx context.Context, borrowingID int64) (Borrowing, error) {
	return post[Borrowing](ctx, c, "/return", ReturnRequest{BorrowingID: borrowingID})
}
