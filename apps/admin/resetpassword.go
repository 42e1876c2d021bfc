package main

import (
	"context"

	"github.com/trezcool/schoolsaas/core"
)

// resetPassword sets a new password and revokes the tokens issued so far.
func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if err = cli.usrRepo.UpdateUser(ctx, &usr); err != nil {
		return err
	}
	return cli.usrRepo.IncrementTokenVersion(ctx, usr.ID)
}
