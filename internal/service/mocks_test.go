package service

import (
	"context"
	"io"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/internal/storage"
)

type mockStoreAPI struct {
	calls []string

	loginResult api.LoginResult
	loginErr    error
	registerOK  bool
	registerErr error

	products   []domain.Product
	categories []domain.Category
	product    domain.Product
	lastForm   api.ProductForm
	lastImage  string
	catalogErr error

	lastToken  string
	lastUserID string
	cart       []domain.Product
	cartErr    error
}

func (m *mockStoreAPI) Login(_ context.Context, email, _ string) (api.LoginResult, error) {
	m.calls = append(m.calls, "login:"+email)
	return m.loginResult, m.loginErr
}

func (m *mockStoreAPI) Register(_ context.Context, name, _, _ string) (bool, error) {
	m.calls = append(m.calls, "register:"+name)
	return m.registerOK, m.registerErr
}

func (m *mockStoreAPI) Categories(context.Context) ([]domain.Category, error) {
	m.calls = append(m.calls, "categories")
	return m.categories, m.catalogErr
}

func (m *mockStoreAPI) Products(context.Context) ([]domain.Product, error) {
	m.calls = append(m.calls, "products")
	return m.products, m.catalogErr
}

func (m *mockStoreAPI) Product(_ context.Context, id string) (domain.Product, error) {
	m.calls = append(m.calls, "product:"+id)
	return m.product, m.catalogErr
}

func (m *mockStoreAPI) AddProduct(_ context.Context, f api.ProductForm) error {
	m.calls = append(m.calls, "add")
	m.recordForm(f)
	return m.catalogErr
}

func (m *mockStoreAPI) UpdateProduct(_ context.Context, productID string, f api.ProductForm) error {
	m.calls = append(m.calls, "update:"+productID)
	m.recordForm(f)
	return m.catalogErr
}

func (m *mockStoreAPI) DeleteProduct(_ context.Context, productID string) error {
	m.calls = append(m.calls, "delete:"+productID)
	return m.catalogErr
}

func (m *mockStoreAPI) AddToCart(_ context.Context, token, productID string) error {
	m.calls = append(m.calls, "cart-add:"+productID)
	m.lastToken = token
	return m.cartErr
}

func (m *mockStoreAPI) CartProducts(_ context.Context, token, userID string) ([]domain.Product, error) {
	m.calls = append(m.calls, "cart-list")
	m.lastToken = token
	m.lastUserID = userID
	return m.cart, m.cartErr
}

func (m *mockStoreAPI) RemoveFromCart(_ context.Context, token, productID string) error {
	m.calls = append(m.calls, "cart-remove:"+productID)
	m.lastToken = token
	return m.cartErr
}

func (m *mockStoreAPI) recordForm(f api.ProductForm) {
	m.lastForm = f
	m.lastImage = ""
	if f.Image != nil {
		data, _ := io.ReadAll(f.Image.Content)
		m.lastImage = string(data)
	}
}

func newAuthContext(t *testing.T) *auth.Context {
	t.Helper()
	store := session.NewStore(storage.NewMemoryKV(), zap.NewNop())
	return auth.NewContext(context.Background(), store, zap.NewNop())
}
