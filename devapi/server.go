package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"empower/api"
	"empower/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Secret         []byte
	TokenTTL       time.Duration
	AllowedOrigins []string
	Now            func() time.Time
}

type Server struct {
	store    Store
	tokens   *tokenIssuer
	validate *validator.Validate
	now      func() time.Time
	handler  http.Handler
}

type ctxKey struct{}

func NewServer(store Store, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * time.Minute
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		store:    store,
		tokens:   &tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL, now: opts.Now},
		validate: validator.New(),
		now:      opts.Now,
	}

	router := mux.NewRouter()
	router.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	router.HandleFunc("/users/me", s.protect(s.handleMe)).Methods(http.MethodGet)
	router.HandleFunc("/users/{id:[0-9]+}/borrowings", s.protect(s.handleBorrowings)).Methods(http.MethodGet)
	router.HandleFunc("/books", s.handleBooks).Methods(http.MethodGet)
	router.HandleFunc("/borrow", s.protect(s.handleBorrow)).Methods(http.MethodPost)
	router.HandleFunc("/return", s.protect(s.handleReturn)).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	s.handler = c.Handler(router)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, detail string, status int) {
	sendJSON(w, status, map[string]string{"detail": detail})
}

// decodeBody reads and validates a JSON request body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			sendError(w, "Invalid field: "+strings.ToLower(verrs[0].Field()), http.StatusUnprocessableEntity)
			return false
		}
		sendError(w, "Invalid request body", http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// protect rejects requests without a valid bearer access token and puts
// the caller's user id in the request context.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			sendError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		userID, err := s.tokens.verify(tokenStr)
		if err != nil {
			sendError(w, "Could not validate credentials", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, userID)
		next(w, r.WithContext(ctx))
	}
}

func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	acct, err := s.store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, ErrNotFound) {
		sendError(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		logger.Error("login: %v", err)
		sendError(w, "Database error", http.StatusInternalServerError)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		sendError(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}

	access, refresh, err := s.tokens.pair(acct.ID, acct.Email)
	if err != nil {
		logger.Error("login: sign token: %v", err)
		sendError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user, err := s.store.CreateUser(r.Context(), Account{
		User: api.User{
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
		},
		PasswordHash: string(hash),
	})
	if errors.Is(err, ErrConflict) {
		sendError(w, "Email or username already registered", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Error("register: %v", err)
		sendError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	logger.Info("register: created user %d (%s)", user.ID, user.Username)
	sendJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), callerID(r))
	if errors.Is(err, ErrNotFound) {
		sendError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		sendError(w, "Database error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.Books(r.Context())
	if err != nil {
		logger.Error("books: %v", err)
		sendError(w, "Database error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, books)
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req api.BorrowRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.UserID != callerID(r) {
		sendError(w, "Cannot borrow on behalf of another user", http.StatusForbidden)
		return
	}

	now := s.now()
	due := req.DueDate.Time
	if due.IsZero() {
		due = now.Add(14 * 24 * time.Hour)
	}
	if !due.After(now) {
		sendError(w, "Due date must be in the future", http.StatusUnprocessableEntity)
		return
	}

	b, err := s.store.Borrow(r.Context(), req.UserID, req.BookID, now, due)
	switch {
	case errors.Is(err, ErrNotFound):
		sendError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, ErrUnavailable):
		sendError(w, "Book is not available", http.StatusConflict)
	case err != nil:
		logger.Error("borrow: %v", err)
		sendError(w, "Database error", http.StatusInternalServerError)
	default:
		sendJSON(w, http.StatusCreated, b)
	}
}

func (s *Server) handleBorrowings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	if id != callerID(r) {
		sendError(w, "Cannot view another user's borrowings", http.StatusForbidden)
		return
	}

	borrowings, err := s.store.Borrowings(r.Context(), id)
	if err != nil {
		logger.Error("borrowings: %v", err)
		sendError(w, "Database error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, borrowings)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req api.ReturnRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	b, err := s.store.Return(r.Context(), req.BorrowingID, callerID(r), s.now())
	switch {
	case errors.Is(err, ErrNotFound):
		sendError(w, "Borrowing not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		sendError(w, "Cannot return another user's book", http.StatusForbidden)
	case errors.Is(err, ErrAlreadyReturned):
		sendError(w, "Book already returned", http.StatusConflict)
	case err != nil:
		logger.Error("return: %v", err)
		sendError(w, "Database error", http.StatusInternalServerError)
	default:
		sendJSON(w, http.StatusOK, b)
	}
}
