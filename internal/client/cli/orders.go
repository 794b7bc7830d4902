package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/mkraev/atelier/internal/common"
)

// Orders authenticates against the ERP and lists sales orders, optionally
// filtered by state.
func (a *App) Orders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	state := fs.String("state", "", "order state filter (e.g. draft, sale, done)")
	limit := fs.Int("limit", 20, "maximum number of orders")
	if err := fs.Parse(args); err != nil {
		return err
	}

	login, err := GetSimpleText(a.reader, "ERP login", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.erp.Authenticate(ctx, a.config.ERPDatabase, login, string(password)); err != nil {
		return fmt.Errorf("erp login failed: %w", err)
	}

	orders, err := a.erp.SearchOrders(ctx, *state, *limit)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders found.")
		return nil
	}

	for _, o := range orders {
		fmt.Fprintf(a.out, "%-8d %-16s %-10s %12.2f\n", o.ID, o.Name, o.State, o.AmountDue)
	}
	return nil
}
