package author

import "golang.org/x/crypto/bcrypt"

// Author is a privilege record granting a User authoring rights over the
// listed subject codenames, gated by its own password.
type Author struct {
	ID           int      `json:"id"`
	UserID       int      `json:"-"`
	PasswordHash []byte   `json:"-"`
	Subjects     []string `json:"subjects"`
}

func (a *Author) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Author) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}
