package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"empower/api"
	"empower/devapi"
	"empower/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, h http.Handler) (*Service, *session.Manager, *session.MemoryStorage) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStorage()
	sess := session.NewManager(store)
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)
	return NewService(client, sess), sess, store
}

func newDevAPI(t *testing.T) http.Handler {
	t.Helper()
	return devapi.NewServer(devapi.NewMemoryStore(), devapi.Options{Secret: []byte("auth-test")})
}

var carol = api.RegisterRequest{
	Username: "carol",
	Email:    "carol@example.com",
	Password: "hunter22",
	FullName: "Carol Reader",
}

func TestSignUpLogsIn(t *testing.T) {
	svc, sess, store := newService(t, newDevAPI(t))

	id, err := svc.SignUp(context.Background(), carol)
	require.NoError(t, err)
	assert.NotZero(t, id.ID)
	assert.Equal(t, "carol", id.Username)
	assert.Equal(t, "carol@example.com", id.Email)

	var token string
	require.NoError(t, store.Get(session.TokenKey, &token))
	assert.NotEmpty(t, token)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, token, sess.Token())
}

func TestSignInAfterSignOut(t *testing.T) {
	svc, sess, _ := newService(t, newDevAPI(t))
	ctx := context.Background()

	first, err := svc.SignUp(ctx, carol)
	require.NoError(t, err)
	svc.SignOut()
	require.False(t, sess.Authenticated())
	require.Empty(t, sess.Token())

	id, err := svc.SignIn(ctx, carol.Email, carol.Password)
	require.NoError(t, err)
	assert.Equal(t, first, id)
	assert.True(t, sess.Authenticated())

	got, ok := sess.Identity()
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestSignInWrongPasswordKeepsSessionEmpty(t *testing.T) {
	svc, sess, store := newService(t, newDevAPI(t))
	ctx := context.Background()

	_, err := svc.SignUp(ctx, carol)
	require.NoError(t, err)
	svc.SignOut()

	_, err = svc.SignIn(ctx, carol.Email, "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", LoginMessage(err))
	assert.False(t, sess.Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestSignUpDuplicate(t *testing.T) {
	svc, _, _ := newService(t, newDevAPI(t))
	ctx := context.Background()

	_, err := svc.SignUp(ctx, carol)
	require.NoError(t, err)
	svc.SignOut()

	_, err = svc.SignUp(ctx, carol)
	require.Error(t, err)
	assert.Equal(t, "Email or username already registered", RegisterMessage(err))
}

func TestSignInWithoutToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	})
	svc, sess, _ := newService(t, mux)

	_, err := svc.SignIn(context.Background(), "x@example.com", "pw")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, "No authentication token received", LoginMessage(err))
	assert.False(t, sess.Authenticated())
}

func TestSignInSendsFreshTokenToMe(t *testing.T) {
	var meAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"new-token","refresh_token":"r","token_type":"bearer"}`))
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		meAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":12,"username":"dave","email":"dave@example.com"}`))
	})
	svc, sess, _ := newService(t, mux)

	id, err := svc.SignIn(context.Background(), "dave@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Bearer new-token", meAuth)
	assert.Equal(t, session.Identity{ID: 12, Username: "dave", Email: "dave@example.com"}, id)
	assert.Equal(t, "new-token", sess.Token())
}

func TestSignUpFallsBackToMeWithoutID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"created"}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":41,"username":"carol","email":"carol@example.com"}`))
	})
	svc, _, _ := newService(t, mux)

	id, err := svc.SignUp(context.Background(), carol)
	require.NoError(t, err)
	assert.Equal(t, int64(41), id.ID)
}
