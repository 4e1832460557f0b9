package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/common"
)

func (a *App) profile(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: profile show | profile set")
		return
	}
	switch args[0] {
	case "show":
		a.profileShow(ctx)
	case "set":
		a.profileSet(ctx)
	default:
		fmt.Fprintln(a.out, "Usage: profile show | profile set")
	}
}

func (a *App) profileShow(ctx context.Context) {
	p, err := a.profiles.Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Fprintln(a.out, "No profile yet; use 'profile set'")
		return
	}
	if err != nil {
		fmt.Fprintln(a.out, "Failed to load profile:", err)
		return
	}
	fmt.Fprintf(a.out, "%s <%s>\n%s\nCurrency: %s [%s]\n",
		p.BusinessName, p.OwnerEmail, p.Address, p.Currency, p.SyncStatus)
}

func (a *App) profileSet(ctx context.Context) {
	p, err := a.profiles.Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		p = &models.Profile{}
	} else if err != nil {
		fmt.Fprintln(a.out, "Failed to load profile:", err)
		return
	}

	if name, _ := getText(a.reader, "Business name", a.out); name != "" {
		p.BusinessName = name
	}
	if email, _ := getText(a.reader, "Owner email", a.out); email != "" {
		p.OwnerEmail = email
	}
	if addr, _ := getText(a.reader, "Address", a.out); addr != "" {
		p.Address = addr
	}
	if cur, _ := getText(a.reader, "Currency", a.out); cur != "" {
		p.Currency = cur
	}

	if err := a.profiles.Save(ctx, p); err != nil {
		fmt.Fprintln(a.out, "Failed to save profile:", err)
		return
	}
	fmt.Fprintln(a.out, "Profile saved")
}
