package main

import (
	"context"
	"fmt"
)

// addAdmin creates an admin account and prints its bearer token; the token is
// what the console sends as the `token` credential.
func (cli *commandLine) addAdmin(email, pwd string) error {
	adm, err := cli.adminSvc.Register(context.Background(), email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q created; token: %s\n", adm.Email, adm.Token)
	return nil
}
