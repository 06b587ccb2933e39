package ui

import (
	"empower/api"
	"empower/auth"
	"empower/session"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// APIURLEnv names the handler environment variable holding the library API
// base URL.
const APIURLEnv = "LIBRARY_API_URL"

const defaultAPIURL = "http://localhost:8080"

// env is what every page needs to talk to the library API.
type env struct {
	session *session.Manager
	client  *api.Client
	auth    *auth.Service
}

func apiURL() string {
	if u := app.Getenv(APIURLEnv); u != "" {
		return u
	}
	return defaultAPIURL
}

// newEnv builds the session from the browser local storage and a client
// that reads its token from that session.
func newEnv(ctx app.Context) (*env, error) {
	sess := session.NewManager(ctx.LocalStorage())
	client, err := api.New(apiURL(), sess)
	if err != nil {
		app.Logf("api client: %v", err)
		return nil, err
	}
	return &env{
		session: sess,
		client:  client,
		auth:    auth.NewService(client, sess),
	}, nil
}
