package main

import (
	"context"
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/facexem/backend/core"
	"github.com/facexem/backend/core/user"
)

// addUser creates a user.User account. Either pwd or email is set, never both.
func (cli *commandLine) addUser(name, email, pwd string, role int) error {
	nu := user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	if err := nu.Validate(validate); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %q created; public key: %s\n", usr.Name, usr.PublicKey)
	return nil
}
