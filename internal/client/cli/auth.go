package cli

import (
	"context"
	"fmt"
)

func (a *App) register(ctx context.Context) {
	username, err := getText(a.reader, "Username", a.out)
	if err != nil {
		return
	}
	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to read password:", err)
		return
	}
	if err := a.auth.Register(ctx, username, string(password)); err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Registered. You can now log in.")
}

func (a *App) login(ctx context.Context) {
	username, err := getText(a.reader, "Username", a.out)
	if err != nil {
		return
	}
	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to read password:", err)
		return
	}
	if err := a.auth.Login(ctx, username, string(password)); err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Logged in")
}
