package view

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service"
)

const dateLayout = "02/01/2006"

func (a *App) home(ctx context.Context) (route, error) {
	a.title("Products", "Commands: add, update N, delete N, buy N, or a header entry.")
	products, err := a.catalog.Products(ctx)
	if err != nil {
		a.fail(err)
	}
	a.products = products
	a.renderProducts()

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

		switch cmd {
		case "add":
			return routeAddProduct, nil
		case "update":
			p, ok := a.pick(arg)
			if !ok {
				continue
			}
			a.selectedID = p.ID
			return routeUpdateProduct, nil
		case "delete":
			p, ok := a.pick(arg)
			if !ok {
				continue
			}
			if err := a.catalog.Delete(ctx, p.ID); err != nil {
				a.fail(err)
				continue
			}
			a.dropProduct(p.ID)
			a.success("Product deleted")
			a.renderProducts()
		case "buy":
			p, ok := a.pick(arg)
			if !ok {
				continue
			}
			if err := a.cart.Add(ctx, p.ID); err != nil {
				a.fail(err)
				if needsLogin(err) {
					return routeLogin, nil
				}
				continue
			}
			a.success(p.Name + " added to cart")
			return routeCheckout, nil
		default:
			a.failure("Unknown command " + strconv.Quote(cmd))
		}
	}
}

func (a *App) pick(arg string) (domain.Product, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.products) {
		a.failure("Pick a product number from the list")
		return domain.Product{}, false
	}
	return a.products[n-1], true
}

func (a *App) dropProduct(id string) {
	kept := a.products[:0]
	for _, p := range a.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	a.products = kept
}

func (a *App) renderProducts() {
	if len(a.products) == 0 {
		fmt.Fprintln(a.out, "No products yet.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPRICE\tCREATED\tIMAGE")
	for i, p := range a.products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, p.Name, p.Price, formatDate(p.CreatedAt), a.image(p.Image))
	}
	tw.Flush()
}

func (a *App) image(path string) string {
	if path == "" {
		return "-"
	}
	return a.assetURL(path)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func (a *App) addProduct(ctx context.Context) (route, error) {
	a.title("Add product", "Type "+backCommand+" to return home.")
	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		a.fail(err)
		return routeHome, nil
	}
	a.renderCategories(categories)

	for {
		in, back, err := a.productForm(ctx, categories, domain.Product{})
		if err != nil {
			return 0, err
		}
		if back {
			return routeHome, nil
		}
		if err := a.catalog.Add(ctx, in); err != nil {
			if !a.showInvalid(err) {
				a.fail(err)
			}
			continue
		}
		a.success("Product added")
		return routeHome, nil
	}
}

func (a *App) updateProduct(ctx context.Context) (route, error) {
	a.title("Update product", "Press enter to keep the current value, "+backCommand+" to return home.")
	current, err := a.catalog.Product(ctx, a.selectedID)
	if err != nil {
		a.fail(err)
		return routeHome, nil
	}
	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		a.fail(err)
		return routeHome, nil
	}
	a.renderCategories(categories)

	for {
		in, back, err := a.productForm(ctx, categories, current)
		if err != nil {
			return 0, err
		}
		if back {
			return routeHome, nil
		}
		in.ExistingImage = current.Image
		if err := a.catalog.Update(ctx, current.ID, in); err != nil {
			if !a.showInvalid(err) {
				a.fail(err)
			}
			continue
		}
		a.success("Product updated")
		return routeHome, nil
	}
}

// productForm pide los campos del producto. Con current no vacio, una
// respuesta vacia conserva el valor actual.
func (a *App) productForm(ctx context.Context, categories []domain.Category, current domain.Product) (service.ProductInput, bool, error) {
	var in service.ProductInput
	price := ""
	if current.ID != "" {
		price = current.Price.String()
	}

	fields := []struct {
		label string
		def   string
		shown string
		dst   *string
	}{
		{"Name", current.Name, current.Name, &in.Name},
		{"Category", current.CategoryID, categoryName(categories, current.CategoryID), &in.CategoryID},
		{"Price", price, price, &in.Price},
		{"Image file", "", current.Image, &in.ImagePath},
	}
	for _, f := range fields {
		prompt := f.label + ": "
		if f.shown != "" {
			prompt = fmt.Sprintf("%s [%s]: ", f.label, f.shown)
		}
		v, err := a.readLine(ctx, prompt)
		if err != nil {
			return in, false, err
		}
		if v == backCommand {
			return in, true, nil
		}
		if v == "" {
			v = f.def
		}
		*f.dst = v
	}
	in.CategoryID = resolveCategory(categories, in.CategoryID)
	return in, false, nil
}

func (a *App) renderCategories(categories []domain.Category) {
	fmt.Fprintln(a.out, "Categories:")
	for i, c := range categories {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, c.Name)
	}
}

// resolveCategory acepta el numero de la lista o el id.
func resolveCategory(categories []domain.Category, v string) string {
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(categories) {
		return categories[n-1].ID
	}
	return v
}

func categoryName(categories []domain.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}
