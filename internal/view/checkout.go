package view

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"storefront/internal/domain"
)

func (a *App) checkout(ctx context.Context) (route, error) {
	a.title("Checkout", "Commands: remove N, or a header entry.")
	items, err := a.cart.Items(ctx)
	if err != nil {
		a.fail(err)
		if needsLogin(err) {
			return routeLogin, nil
		}
	}
	a.renderCart(items)

	for {
		line, err := a.readLine(ctx, "> ")
		if err != nil {
			return 0, err
		}
		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}
		if next, ok := a.navigate(cmd); ok {
			return next, nil
		}
		if cmd != "remove" {
			a.failure("Unknown command " + strconv.Quote(cmd))
			continue
		}

		n, convErr := strconv.Atoi(arg)
		if convErr != nil || n < 1 || n > len(items) {
			a.failure("Pick an item number from the cart")
			continue
		}
		if err := a.cart.Remove(ctx, items[n-1].ID); err != nil {
			a.fail(err)
			if needsLogin(err) {
				return routeLogin, nil
			}
			continue
		}
		a.success(items[n-1].Name + " removed from cart")

		items, err = a.cart.Items(ctx)
		if err != nil {
			a.fail(err)
			if needsLogin(err) {
				return routeLogin, nil
			}
		}
		a.renderCart(items)
	}
}

func (a *App) renderCart(items []domain.Product) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return
	}
	var total domain.Price
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPRICE\tIMAGE")
	for i, p := range items {
		total += p.Price
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, p.Name, p.Price, a.image(p.Image))
	}
	tw.Flush()
	fmt.Fprintf(a.out, "Total: %s\n", total)
}
