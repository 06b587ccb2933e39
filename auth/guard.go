package auth

import "empower/session"

// LoginPath is where unauthenticated viewers are sent.
const LoginPath = "/login"

// Guard reports whether the viewer is signed in. When not, it calls
// navigate with LoginPath.
func Guard(sess *session.Manager, navigate func(string)) bool {
	if sess != nil && sess.Authenticated() {
		return true
	}
	navigate(LoginPath)
	return false
}
