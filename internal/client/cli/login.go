package cli

import (
	"context"
	"fmt"

	"github.com/mkraev/atelier/internal/common"
)

// Login prompts for credentials, exchanges them for an access token and
// persists the token for later invocations.
func (a *App) Login(ctx context.Context) error {
	login, err := GetSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, login, string(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.saveToken(); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// Register prompts for credentials, creates the account and persists the
// returned token.
func (a *App) Register(ctx context.Context) error {
	login, err := GetSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, login, string(password)); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := a.saveToken(); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(a.out, "Registered and logged in.")
	return nil
}
