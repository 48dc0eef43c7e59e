package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trophyshop/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for admin credentials. Only admin accounts may log in
// from the CLI.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := a.admin.Login(ctx, userName, string(password)); err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			return errors.New("invalid username or password")
		case errors.Is(err, client.ErrForbidden):
			return errors.New("account has no admin rights")
		}
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.admin.LoggedIn() {
		return nil
	}
	err := a.admin.Logout(ctx)
	a.userName = ""
	return err
}
