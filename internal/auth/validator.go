package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials are the username and password rules shared by signup and
// login.
type Credentials struct {
	Username string `validate:"required,min=3,max=32,alphanum"`
	Password string `validate:"required,min=8,max=72"`
}

// ValidateCredentials checks username and password against the account rules.
func ValidateCredentials(username, password string) error {
	if err := validate.Struct(Credentials{Username: username, Password: password}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
