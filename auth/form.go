package auth

import (
	"errors"
	"fmt"

	"empower/api"

	"github.com/go-playground/validator/v10"
)

const (
	loginFailed    = "Login failed. Check your credentials."
	registerFailed = "Registration failed. Please try again."
	noToken        = "No authentication token received"
)

var validate = validator.New()

var fieldLabels = map[string]string{
	"FullName": "Full name",
}

var ErrPasswordMismatch = errors.New("Passwords do not match")

// ValidateLogin checks the login form before it is submitted.
func ValidateLogin(req api.LoginRequest) error {
	return describe(validate.Struct(req))
}

// ValidateRegister checks the registration form before it is submitted.
func ValidateRegister(req api.RegisterRequest, confirm string) error {
	if err := describe(validate.Struct(req)); err != nil {
		return err
	}
	if req.Password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// LoginMessage is the text shown when sign-in fails.
func LoginMessage(err error) string {
	if errors.Is(err, ErrNoToken) {
		return noToken
	}
	return api.Detail(err, loginFailed)
}

// RegisterMessage is the text shown when sign-up fails.
func RegisterMessage(err error) string {
	if errors.Is(err, ErrNoToken) {
		return noToken
	}
	return api.Detail(err, registerFailed)
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Field()
	if label, ok := fieldLabels[field]; ok {
		field = label
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return errors.New("Enter a valid email address")
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Errorf("%s is invalid", field)
}
