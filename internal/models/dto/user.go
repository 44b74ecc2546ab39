package dto

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/hongminglow/userhub/internal/models"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

var (
	usernameRules = []validation.Rule{validation.Required, validation.Length(1, 50)}
	emailRules    = []validation.Rule{validation.Required, validation.Length(3, 100), is.Email}
	passwordRules = []validation.Rule{validation.Required, validation.By(passwordLength)}
)

func passwordLength(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if s, ok := v.(string); ok && len(s) > maxPasswordBytes {
		return errors.New("must be at most 72 bytes")
	}
	return nil
}

// UserCreateRequest mirrors the administrative create shape. Omitted flags
// fall back to active and non-superuser.
type UserCreateRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser *bool  `json:"is_superuser"`
}

func (r UserCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, passwordRules...),
	)
}

// UserUpdateRequest is a partial update; absent fields stay untouched.
type UserUpdateRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (r UserUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.By(passwordLength)),
	)
}

// Patch converts the request into the model-level partial update.
func (r UserUpdateRequest) Patch() models.UserUpdate {
	return models.UserUpdate{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		IsActive:    r.IsActive,
		IsSuperuser: r.IsSuperuser,
	}
}
