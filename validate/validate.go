// Package validate performs format and strength checks on user-supplied
// identity fields. It is stateless and safe for concurrent use; rejections
// carry a specific user-facing reason and happen before any side effect.
package validate

import (
	"errors"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidEmail is an exported constant or variable used by the authentication engine.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword is an exported constant or variable used by the authentication engine.
	ErrWeakPassword = errors.New("password must be 8-128 characters with upper, lower, and digit")
	// ErrInvalidDisplayName is an exported constant or variable used by the authentication engine.
	ErrInvalidDisplayName = errors.New("display name must be 1-50 printable characters")
)

// Validator defines a public type used by taskauth APIs.
//
// Validator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Validator struct {
	v *validator.Validate
}

// New builds a [Validator] with the custom password-strength and
// display-name rules registered.
func New() *Validator {
	v := validator.New()

	// Registration only fails for nil/blank tags; these are constants.
	_ = v.RegisterValidation("password_strength", passwordStrength)
	_ = v.RegisterValidation("display_name", displayName)

	return &Validator{v: v}
}

// Email checks address format.
func (x *Validator) Email(s string) error {
	if x.v.Var(s, "required,email,max=254") != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Password checks length bounds and character-class strength.
func (x *Validator) Password(s string) error {
	if x.v.Var(s, "required,min=8,max=128,password_strength") != nil {
		return ErrWeakPassword
	}
	return nil
}

// DisplayName checks length bounds and rejects control characters.
func (x *Validator) DisplayName(s string) error {
	if x.v.Var(s, "required,min=1,max=50,display_name") != nil {
		return ErrInvalidDisplayName
	}
	return nil
}

func passwordStrength(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func displayName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
