package devapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"empower/api"
	"empower/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// SQLStore keeps users, books and borrowings in MySQL or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects to the database, retrying while it comes up, and
// creates the tables if they are missing.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != "mysql" && driver != "postgres" {
		return nil, fmt.Errorf("devapi: unsupported database driver %q", driver)
	}
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	for i := 0; i < 10; i++ {
		db, err = sql.Open(driver, dsn)
		if err == nil {
			err = db.PingContext(ctx)
			if err == nil {
				break
			}
			db.Close()
		}
		logger.Warn("OpenSQL: waiting for database (%s)... %v", driver, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("devapi: connect to database: %w", err)
	}

	logger.Info("OpenSQL: connected to %s", driver)
	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// normalizeDSN makes MySQL scan DATETIME columns into time.Time.
func normalizeDSN(driver, dsn string) (string, error) {
	if driver != "mysql" {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("devapi: invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	id := "id INT AUTO_INCREMENT PRIMARY KEY"
	if s.driver == "postgres" {
		id = "id SERIAL PRIMARY KEY"
	}

	tables := []struct{ name, ddl string }{
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			` + id + `,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`},
		{"books", `
		CREATE TABLE IF NOT EXISTS books (
			` + id + `,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			isbn VARCHAR(32) NOT NULL DEFAULT '',
			published_year INT NOT NULL DEFAULT 0,
			is_available BOOLEAN NOT NULL DEFAULT TRUE
		)`},
		{"borrowings", `
		CREATE TABLE IF NOT EXISTS borrowings (
			` + id + `,
			user_id INT NOT NULL REFERENCES users(id),
			book_id INT NOT NULL REFERENCES books(id),
			borrow_date TIMESTAMP NOT NULL,
			due_date TIMESTAMP NOT NULL,
			return_date TIMESTAMP NULL
		)`},
	}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("devapi: migration (%s) failed: %w", t.name, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the new row id.
func (s *SQLStore) insert(ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, query string, args ...any) (int64, error) {
	if s.driver == "postgres" {
		var id int64
		err := q.QueryRowContext(ctx, s.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (s *SQLStore) CreateUser(ctx context.Context, acct Account) (api.User, error) {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO users (username, email, full_name, password_hash, is_active) VALUES (?, ?, ?, ?, ?)",
		acct.Username, acct.Email, acct.FullName, acct.PasswordHash, true)
	if isUniqueViolation(err) {
		return api.User{}, ErrConflict
	}
	if err != nil {
		return api.User{}, fmt.Errorf("devapi: create user: %w", err)
	}
	acct.ID = id
	acct.IsActive = true
	return acct.User, nil
}

func (s *SQLStore) UserByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, username, email, full_name, password_hash, is_active FROM users WHERE LOWER(email) = LOWER(?)"), email).
		Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.PasswordHash, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) UserByID(ctx context.Context, id int64) (api.User, error) {
	var u api.User
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, username, email, full_name, is_active FROM users WHERE id = ?"), id).
		Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return api.User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) AddBook(ctx context.Context, b api.Book) (api.Book, error) {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO books (title, author, isbn, published_year, is_available) VALUES (?, ?, ?, ?, ?)",
		b.Title, b.Author, b.ISBN, b.PublishedYear, b.IsAvailable)
	if err != nil {
		return api.Book{}, fmt.Errorf("devapi: add book: %w", err)
	}
	b.ID = id
	return b, nil
}

func (s *SQLStore) Books(ctx context.Context) ([]api.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, author, isbn, published_year, is_available FROM books ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []api.Book{}
	for rows.Next() {
		var b api.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear, &b.IsAvailable); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *SQLStore) Borrow(ctx context.Context, userID, bookID int64, borrowed, due time.Time) (api.Borrowing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Borrowing{}, err
	}
	defer tx.Rollback()

	var ref api.BookRef
	var available bool
	err = tx.QueryRowContext(ctx, s.rebind(
		"SELECT id, title, author, is_available FROM books WHERE id = ? FOR UPDATE"), bookID).
		Scan(&ref.ID, &ref.Title, &ref.Author, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Borrowing{}, ErrNotFound
	}
	if err != nil {
		return api.Borrowing{}, err
	}
	if !available {
		return api.Borrowing{}, ErrUnavailable
	}

	if _, err := tx.ExecContext(ctx, s.rebind("UPDATE books SET is_available = ? WHERE id = ?"), false, bookID); err != nil {
		return api.Borrowing{}, err
	}
	id, err := s.insert(ctx, tx,
		"INSERT INTO borrowings (user_id, book_id, borrow_date, due_date) VALUES (?, ?, ?, ?)",
		userID, bookID, borrowed.UTC(), due.UTC())
	if err != nil {
		return api.Borrowing{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Borrowing{}, err
	}

	return api.Borrowing{
		ID:         id,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: api.NewTime(borrowed),
		DueDate:    api.NewTime(due),
		Book:       ref,
	}, nil
}

const borrowingColumns = `
	SELECT br.id, br.user_id, br.book_id, br.borrow_date, br.due_date, br.return_date,
	       b.id, b.title, b.author
	FROM borrowings br JOIN books b ON b.id = br.book_id`

func scanBorrowing(row interface{ Scan(...any) error }) (api.Borrowing, error) {
	var b api.Borrowing
	var borrowed, due time.Time
	var returned sql.NullTime
	err := row.Scan(&b.ID, &b.UserID, &b.BookID, &borrowed, &due, &returned,
		&b.Book.ID, &b.Book.Title, &b.Book.Author)
	if err != nil {
		return api.Borrowing{}, err
	}
	b.BorrowDate = api.NewTime(borrowed)
	b.DueDate = api.NewTime(due)
	if returned.Valid {
		rt := api.NewTime(returned.Time)
		b.ReturnDate = &rt
	}
	return b, nil
}

func (s *SQLStore) Borrowings(ctx context.Context, userID int64) ([]api.Borrowing, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(borrowingColumns+" WHERE br.user_id = ? ORDER BY br.id"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []api.Borrowing{}
	for rows.Next() {
		b, err := scanBorrowing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) Return(ctx context.Context, borrowingID, userID int64, returned time.Time) (api.Borrowing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Borrowing{}, err
	}
	defer tx.Rollback()

	b, err := scanBorrowing(tx.QueryRowContext(ctx, s.rebind(borrowingColumns+" WHERE br.id = ?"), borrowingID))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Borrowing{}, ErrNotFound
	}
	if err != nil {
		return api.Borrowing{}, err
	}
	if b.UserID != userID {
		return api.Borrowing{}, ErrForbidden
	}
	if b.Returned() {
		return api.Borrowing{}, ErrAlreadyReturned
	}

	res, err := tx.ExecContext(ctx, s.rebind("UPDATE borrowings SET return_date = ? WHERE id = ? AND return_date IS NULL"), returned.UTC(), borrowingID)
	if err != nil {
		return api.Borrowing{}, err
	}
	if err := returnedOnce(res); err != nil {
		return api.Borrowing{}, err
	}
	if _, err := tx.ExecContext(ctx, s.rebind("UPDATE books SET is_available = ? WHERE id = ?"), true, b.BookID); err != nil {
		return api.Borrowing{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Borrowing{}, err
	}

	rt := api.NewTime(returned)
	b.ReturnDate = &rt
	return b, nil
}

// returnedOnce reports ErrAlreadyReturned when a concurrent return got to
// the row first.
func returnedOnce(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyReturned
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
