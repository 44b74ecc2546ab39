package models

import "time"

// User captures application-facing fields for an account. The password hash
// is never serialized.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Username    *string
	Email       *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// Apply copies the supplied fields onto user. Password is not handled here;
// callers hash it and set HashedPassword themselves.
func (u UserUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if u.IsSuperuser != nil {
		user.IsSuperuser = *u.IsSuperuser
	}
}
