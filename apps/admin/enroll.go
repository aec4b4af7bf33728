package main

import (
	"context"
	"fmt"
)

// enroll creates an empty subject enrollment for the user with the given
// public key.
func (cli *commandLine) enroll(publicKey, codename string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByPublicKey(ctx, publicKey)
	if err != nil {
		return err
	}
	sub, err := cli.usrSvc.EnrollSubject(ctx, usr.ID, codename)
	if err != nil {
		return err
	}
	fmt.Printf("user %q enrolled in %q (enrollment %d)\n", usr.Name, sub.SubjectCodename, sub.ID)
	return nil
}
