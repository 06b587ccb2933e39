package auth

import (
	"testing"

	"empower/api"
	"empower/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRedirectsSignedOut(t *testing.T) {
	sess := session.NewManager(session.NewMemoryStorage())

	var went string
	ok := Guard(sess, func(path string) { went = path })
	assert.False(t, ok)
	assert.Equal(t, LoginPath, went)
}

func TestGuardAllowsSignedIn(t *testing.T) {
	sess := session.NewManager(session.NewMemoryStorage())
	require.NoError(t, sess.Login("tok", session.Identity{ID: 1, Username: "a", Email: "a@example.com"}))

	called := false
	ok := Guard(sess, func(string) { called = true })
	assert.True(t, ok)
	assert.False(t, called)
}

func TestValidateRegister(t *testing.T) {
	valid := api.RegisterRequest{Username: "erin", Email: "erin@example.com", Password: "longenough", FullName: "Erin"}
	assert.NoError(t, ValidateRegister(valid, "longenough"))
	assert.ErrorIs(t, ValidateRegister(valid, "different"), ErrPasswordMismatch)

	noEmail := valid
	noEmail.Email = "erin"
	assert.EqualError(t, ValidateRegister(noEmail, "longenough"), "Enter a valid email address")

	short := valid
	short.Password = "abc"
	assert.EqualError(t, ValidateRegister(short, "abc"), "Password must be at least 6 characters")

	noName := valid
	noName.FullName = ""
	assert.EqualError(t, ValidateRegister(noName, "longenough"), "Full name is required")
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(api.LoginRequest{Email: "a@example.com", Password: "x"}))
	assert.EqualError(t, ValidateLogin(api.LoginRequest{Email: "a@example.com"}), "Password is required")
}
