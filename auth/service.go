// Package auth drives sign-in, sign-up and sign-out against the library
// API and records the outcome in the session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"empower/api"
	"empower/session"
)

var ErrNoToken = errors.New("auth: no authentication token received")

type Service struct {
	client  *api.Client
	session *session.Manager
}

func NewService(client *api.Client, sess *session.Manager) *Service {
	return &Service{client: client, session: sess}
}

// SignIn exchanges email and password for a token, looks up the user the
// token belongs to and stores both.
func (s *Service) SignIn(ctx context.Context, email, password string) (session.Identity, error) {
	token, err := s.token(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}

	me, err := s.client.WithToken(token).Me(ctx)
	if err != nil {
		return session.Identity{}, fmt.Errorf("auth: fetch current user: %w", err)
	}

	id := identityOf(me)
	if err := s.session.Login(token, id); err != nil {
		return session.Identity{}, err
	}
	return id, nil
}

// SignUp registers a new account and signs in with the same credentials.
func (s *Service) SignUp(ctx context.Context, req api.RegisterRequest) (session.Identity, error) {
	created, err := s.client.Register(ctx, req)
	if err != nil {
		return session.Identity{}, fmt.Errorf("auth: register: %w", err)
	}

	token, err := s.token(ctx, req.Email, req.Password)
	if err != nil {
		return session.Identity{}, err
	}

	if created.ID == 0 {
		created, err = s.client.WithToken(token).Me(ctx)
		if err != nil {
			return session.Identity{}, fmt.Errorf("auth: fetch current user: %w", err)
		}
	}
	if created.Username == "" {
		created.Username = req.Username
	}
	if created.Email == "" {
		created.Email = req.Email
	}

	id := identityOf(created)
	if err := s.session.Login(token, id); err != nil {
		return session.Identity{}, err
	}
	return id, nil
}

func (s *Service) SignOut() {
	s.session.Logout()
}

func (s *Service) token(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("auth: login: %w", err)
	}
	if resp.AccessToken == "" {
		return "", ErrNoToken
	}
	return resp.AccessToken, nil
}

func identityOf(u api.User) session.Identity {
	return session.Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}
