package api

import (
	"context"
	"net/http"

	"storefront/internal/domain"
)

const (
	pathCategories     = "/api/category/getCategories"
	pathProducts       = "/api/product/fetchProducts"
	pathProductByID    = "/api/product/getProductById"
	pathProductAdd     = "/api/product/add"
	pathProductUpdate  = "/api/product/update"
	pathProductDelete  = "/api/product/delete"
	pathLogin          = "/api/auth/login"
	pathRegister       = "/api/auth/register"
	pathCheckout       = "/api/checkout"
	pathCartProducts   = "/api/checkout/getUserCartProducts"
	pathCartRemoveItem = "/api/checkout/removeProductFromCart"
)

// LoginResult es el envelope de /api/auth/login.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// ProductForm son los campos multipart de alta y edicion de productos.
// Si Image es nil, ImageRef se envia como texto (la imagen ya existente).
type ProductForm struct {
	Name       string
	CategoryID string
	Price      string
	Image      *File
	ImageRef   string
}

func (f ProductForm) form(extra map[string]string) Form {
	fields := map[string]string{
		"name":       f.Name,
		"categoryId": f.CategoryID,
		"price":      f.Price,
	}
	for k, v := range extra {
		fields[k] = v
	}
	form := Form{Fields: fields}
	if f.Image != nil {
		form.Files = map[string]File{"image": *f.Image}
	} else if f.ImageRef != "" {
		fields["image"] = f.ImageRef
	}
	return form
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	resp, err := c.Request(ctx, http.MethodGet, pathCategories, nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.Request(ctx, http.MethodGet, pathProducts, nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	resp, err := c.Request(ctx, http.MethodPost, pathProductByID, map[string]string{"id": id}, "")
	if err != nil {
		return domain.Product{}, err
	}
	var out struct {
		Product domain.Product `json:"product"`
	}
	if err := resp.Decode(&out); err != nil {
		return domain.Product{}, err
	}
	return out.Product, nil
}

func (c *Client) AddProduct(ctx context.Context, f ProductForm) error {
	_, err := c.Upload(ctx, pathProductAdd, f.form(nil), "")
	return err
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, f ProductForm) error {
	_, err := c.Upload(ctx, pathProductUpdate, f.form(map[string]string{"productId": productID}), "")
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	_, err := c.Request(ctx, http.MethodDelete, pathProductDelete, map[string]string{"productId": productID}, "")
	return err
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	resp, err := c.Request(ctx, http.MethodPost, pathLogin, map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return LoginResult{}, err
	}
	var out LoginResult
	if err := resp.Decode(&out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Register devuelve el campo status del envelope.
func (c *Client) Register(ctx context.Context, name, email, password string) (bool, error) {
	resp, err := c.Request(ctx, http.MethodPost, pathRegister, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return false, err
	}
	var out struct {
		Status bool `json:"status"`
	}
	if err := resp.Decode(&out); err != nil {
		return false, err
	}
	return out.Status, nil
}

func (c *Client) AddToCart(ctx context.Context, token, productID string) error {
	_, err := c.Request(ctx, http.MethodPost, pathCheckout, map[string]string{"productId": productID}, token)
	return err
}

func (c *Client) CartProducts(ctx context.Context, token, userID string) ([]domain.Product, error) {
	resp, err := c.Request(ctx, http.MethodPost, pathCartProducts, map[string]string{"userId": userID}, token)
	if err != nil {
		return nil, err
	}
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, token, productID string) error {
	_, err := c.Request(ctx, http.MethodPost, pathCartRemoveItem, map[string]string{"productId": productID}, token)
	return err
}
