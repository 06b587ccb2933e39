package ui

import (
	"context"

	"empower/api"
	"empower/auth"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
)

// afterSignIn is where a successful sign-in or sign-up lands.
const afterSignIn = "/books"

type LoginPage struct {
	app.Compo
	Email    string
	Password string
	Error    string
	Loading  bool

	env *env
}

func (p *LoginPage) OnMount(ctx app.Context) {
	e, err := newEnv(ctx)
	if err != nil {
		p.Error = "The library service is not configured"
		return
	}
	p.env = e
}

func (p *LoginPage) login(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if p.env == nil || p.Loading {
		return
	}

	req := api.LoginRequest{Email: p.Email, Password: p.Password}
	if err := auth.ValidateLogin(req); err != nil {
		p.Error = err.Error()
		p.Update()
		return
	}

	p.Loading = true
	p.Error = ""
	p.Update()

	go func() {
		id, err := p.env.auth.SignIn(context.Background(), req.Email, req.Password)
		ctx.Dispatch(func(ctx app.Context) {
			p.Loading = false
			if err != nil {
				app.Logf("login: %v", err)
				p.Error = auth.LoginMessage(err)
				p.Update()
				return
			}
			app.Logf("signed in as %s", id.Username)
			ctx.Navigate(afterSignIn)
		})
	}()
}

func (p *LoginPage) Render() app.UI {
	return &Layout{
		Active: "/login",
		Content: []app.UI{
			app.Div().Class("auth-container").Body(
				app.Div().Class("auth-card").Body(
					// Header
					app.Div().Class("auth-header").Body(
						app.Div().Class("auth-icon").Body(
							app.Span().Class("material-symbols-rounded").Text("local_library"),
						),
						app.H1().Class("auth-title").Text("Welcome Back"),
						app.Span().Class("auth-subtitle").Text("Sign in to your library account"),
					),

					// Error
					app.If(p.Error != "",
						app.Div().Class("auth-error").Body(
							app.Span().Class("material-symbols-rounded").Style("font-size", "18px").Text("error"),
							app.Text(p.Error),
						),
					),

					app.Form().OnSubmit(p.login).Class("auth-form").Body(
						app.Div().Class("md3-field").Body(
							app.Label().Text("Email"),
							app.Input().Type("email").Required(true).Value(p.Email).OnInput(p.ValueTo(&p.Email)).AutoFocus(true),
						),
						app.Div().Class("md3-field").Body(
							app.Label().Text("Password"),
							app.Input().Type("password").Required(true).Value(p.Password).OnInput(p.ValueTo(&p.Password)),
						),
						submitButton(p.Loading, "Login", "Logging in..."),
					),

					app.Div().Class("auth-footer").Body(
						app.Text("Don't have an account? "),
						app.A().Class("link-primary").Href("/register").Text("Sign up here"),
					),
				),
			),
		},
	}
}

type RegisterPage struct {
	app.Compo
	FullName string
	Username string
	Email    string
	Password string
	Confirm  string
	Error    string
	Loading  bool

	env *env
}

func (p *RegisterPage) OnMount(ctx app.Context) {
	e, err := newEnv(ctx)
	if err != nil {
		p.Error = "The library service is not configured"
		return
	}
	p.env = e
}

func (p *RegisterPage) register(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if p.env == nil || p.Loading {
		return
	}

	req := api.RegisterRequest{
		Username: p.Username,
		Email:    p.Email,
		Password: p.Password,
		FullName: p.FullName,
	}
	if err := auth.ValidateRegister(req, p.Confirm); err != nil {
		p.Error = err.Error()
		p.Update()
		return
	}

	p.Loading = true
	p.Error = ""
	p.Update()

	go func() {
		_, err := p.env.auth.SignUp(context.Background(), req)
		ctx.Dispatch(func(ctx app.Context) {
			p.Loading = false
			if err != nil {
				app.Logf("register: %v", err)
				p.Error = auth.RegisterMessage(err)
				p.Update()
				return
			}
			ctx.Navigate(afterSignIn)
		})
	}()
}

func (p *RegisterPage) Render() app.UI {
	return &Layout{
		Active: "/register",
		Content: []app.UI{
			app.Div().Class("auth-container").Body(
				app.Div().Class("auth-card").Body(
					app.Div().Class("auth-header").Body(
						app.Div().Class("auth-icon").Body(
							app.Span().Class("material-symbols-rounded").Text("person_add"),
						),
						app.H1().Class("auth-title").Text("Create Account"),
						app.Span().Class("auth-subtitle").Text("Join Empower Library to borrow books"),
					),

					app.If(p.Error != "",
						app.Div().Class("auth-error").Body(
							app.Span().Class("material-symbols-rounded").Style("font-size", "18px").Text("error"),
							app.Text(p.Error),
						),
					),

					app.Form().OnSubmit(p.register).Class("auth-form").Body(
						app.Div().Class("md3-field").Body(
							app.Label().Text("Full Name"),
							app.Input().Type("text").Required(true).Value(p.FullName).OnInput(p.ValueTo(&p.FullName)).AutoFocus(true),
						),
						app.Div().Class("md3-field").Body(
							app.Label().Text("Username"),
							app.Input().Type("text").Required(true).Value(p.Username).OnInput(p.ValueTo(&p.Username)),
						),
						app.Div().Class("md3-field").Body(
							app.Label().Text("Email"),
							app.Input().Type("email").Required(true).Value(p.Email).OnInput(p.ValueTo(&p.Email)),
						),
						app.Div().Class("md3-field").Body(
							app.Label().Text("Password"),
							app.Input().Type("password").Required(true).Value(p.Password).OnInput(p.ValueTo(&p.Password)),
						),
						app.Div().Class("md3-field").Body(
							app.Label().Text("Confirm Password"),
							app.Input().Type("password").Required(true).Value(p.Confirm).OnInput(p.ValueTo(&p.Confirm)),
						),
						submitButton(p.Loading, "Create Account", "Creating Account..."),
					),

					app.Div().Class("auth-footer").Body(
						app.Text("Already have an account? "),
						app.A().Class("link-primary").Href("/login").Text("Login here"),
					),
				),
			),
		},
	}
}

func submitButton(loading bool, label, busyLabel string) app.UI {
	return app.Button().Type("submit").Class("btn-m3-primary").Disabled(loading).Body(
		app.If(loading,
			app.Div().Class("loader-spinner").Style("width", "20px").Style("height", "20px").Style("border-color", "var(--md-sys-color-on-primary)").Style("border-bottom-color", "transparent"),
			app.Text(busyLabel),
		).Else(
			app.Text(label),
			app.Span().Class("material-symbols-rounded").Style("font-size", "18px").Text("arrow_forward"),
		),
	)
}
