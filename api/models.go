package api

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear int    `json:"published_year"`
	IsAvailable   bool   `json:"is_available"`
}

// BookRef is the book summary nested in a borrowing.
type BookRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type Borrowing struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	BookID     int64   `json:"book_id"`
	BorrowDate Time    `json:"borrow_date"`
	DueDate    Time    `json:"due_date"`
	ReturnDate *Time   `json:"return_date"`
	Book       BookRef `json:"book"`
}

// Returned reports whether the book has been handed back.
func (b Borrowing) Returned() bool {
	return b.ReturnDate != nil && !b.ReturnDate.IsZero()
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the body of a successful login. The refresh token is
// not used by this client.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type BorrowRequest struct {
	BookID  int64 `json:"book_id" validate:"required"`
	UserID  int64 `json:"user_id" validate:"required"`
	DueDate Time  `json:"due_date"`
}

type ReturnRequest struct {
	BorrowingID int64 `json:"borrowing_id" validate:"required"`
}
