package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
)

// CatalogAPI son los endpoints de productos y categorias.
type CatalogAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	AddProduct(ctx context.Context, f api.ProductForm) error
	UpdateProduct(ctx context.Context, productID string, f api.ProductForm) error
	DeleteProduct(ctx context.Context, productID string) error
}

// ProductInput son los campos del formulario de producto.
// ImagePath es una ruta local a subir; en una edicion puede quedar vacia si
// ExistingImage ya tiene la referencia de la imagen actual.
type ProductInput struct {
	Name          string `json:"name"`
	CategoryID    string `json:"categoryId"`
	Price         string `json:"price"`
	ImagePath     string `json:"image"`
	ExistingImage string `json:"-"`
}

func (in ProductInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.CategoryID, validation.Required),
		validation.Field(&in.Price, validation.Required, positivePrice),
		validation.Field(&in.ImagePath, validation.Required, readableFile),
	)
}

type productUpdate struct {
	ProductInput
}

func (in productUpdate) Validate() error {
	imageRules := []validation.Rule{}
	if in.ExistingImage == "" {
		imageRules = append(imageRules, validation.Required)
	}
	return validation.ValidateStruct(&in.ProductInput,
		validation.Field(&in.ProductInput.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.ProductInput.CategoryID, validation.Required),
		validation.Field(&in.ProductInput.Price, validation.Required, positivePrice),
		validation.Field(&in.ProductInput.ImagePath, imageRules...),
	)
}

// CatalogService maneja el listado y el ABM de productos.
type CatalogService struct {
	logger *zap.Logger
	api    CatalogAPI
}

func NewCatalogService(logger *zap.Logger, catalogAPI CatalogAPI) *CatalogService {
	return &CatalogService{logger: logger, api: catalogAPI}
}

func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := s.api.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, &domain.ValidationError{Err: validation.Errors{"id": errBlank}}
	}
	p, err := s.api.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("fetch product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) Add(ctx context.Context, in ProductInput) error {
	in = trimProductInput(in)
	if err := validate(in); err != nil {
		return err
	}

	file, f, err := api.OpenFile(in.ImagePath)
	if err != nil {
		return &domain.ValidationError{Err: validation.Errors{"image": err}}
	}
	defer f.Close()

	form := api.ProductForm{
		Name:       in.Name,
		CategoryID: in.CategoryID,
		Price:      in.Price,
		Image:      &file,
	}
	if err := s.api.AddProduct(ctx, form); err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	s.logger.Debug("product added", zap.String("name", in.Name))
	return nil
}

// Update sube ImagePath si es un archivo local; si no, envia la referencia
// de la imagen existente.
func (s *CatalogService) Update(ctx context.Context, productID string, in ProductInput) error {
	in = trimProductInput(in)
	if strings.TrimSpace(productID) == "" {
		return &domain.ValidationError{Err: validation.Errors{"productId": errBlank}}
	}
	if err := validate(productUpdate{in}); err != nil {
		return err
	}

	form := api.ProductForm{
		Name:       in.Name,
		CategoryID: in.CategoryID,
		Price:      in.Price,
		ImageRef:   in.ExistingImage,
	}
	if in.ImagePath != "" {
		if isLocalFile(in.ImagePath) {
			file, f, err := api.OpenFile(in.ImagePath)
			if err != nil {
				return &domain.ValidationError{Err: validation.Errors{"image": err}}
			}
			defer f.Close()
			form.Image = &file
		} else {
			form.ImageRef = in.ImagePath
		}
	}

	if err := s.api.UpdateProduct(ctx, productID, form); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return &domain.ValidationError{Err: validation.Errors{"productId": errBlank}}
	}
	if err := s.api.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func trimProductInput(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Price = strings.TrimSpace(in.Price)
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	in.ExistingImage = strings.TrimSpace(in.ExistingImage)
	return in
}
