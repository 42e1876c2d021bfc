package main

import (
	"context"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(email, pwd, role, firstName, lastName string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	exists := err == nil
	if err != nil && !core.IsNotFound(err) {
		return err
	}
	if !exists {
		usr = user.User{
			Email:   email,
			Profile: &user.Profile{FirstName: firstName, LastName: lastName},
		}
	}
	usr.Role = role
	usr.IsActive = true
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		return cli.usrRepo.UpdateUser(ctx, &usr)
	}
	return cli.usrRepo.CreateUser(ctx, &usr)
}
