package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden is returned when the caller is not the owner and not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrAdminProtected is returned when a delete targets an admin account.
	ErrAdminProtected = errors.New("admin accounts cannot be deleted")
	// ErrValidation wraps field level input problems.
	ErrValidation = errors.New("invalid input")
)

// validateInput runs struct tag validation and folds failures into ErrValidation.
func validateInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "max":
			fields = append(fields, fmt.Sprintf("%s exceeds %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "min":
			fields = append(fields, fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "email":
			fields = append(fields, fmt.Sprintf("%s must be a valid email", strings.ToLower(fe.Field())))
		default:
			fields = append(fields, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}
