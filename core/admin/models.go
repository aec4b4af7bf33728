package admin

import (
	"golang.org/x/crypto/bcrypt"
)

// Admin is a credential holder for the administrative API. Its Token is the
// static bearer token compared against the session on authed requests.
type Admin struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	Token        string `json:"token"`
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Credentials is the admin identity claimed by every gated request.
type Credentials struct {
	Token string `json:"token" validate:"required"`
	Code  string `json:"code" validate:"required"`
}
