package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shoe.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestCatalogService_AddUploadsImage(t *testing.T) {
	mock := &mockStoreAPI{}
	svc := NewCatalogService(zap.NewNop(), mock)
	img := writeImage(t)

	err := svc.Add(context.Background(), ProductInput{Name: " Shoe ", CategoryID: "c1", Price: "49.90", ImagePath: img})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if mock.lastForm.Name != "Shoe" || mock.lastForm.Price != "49.90" || mock.lastForm.CategoryID != "c1" {
		t.Fatalf("unexpected form %+v", mock.lastForm)
	}
	if mock.lastForm.Image == nil || mock.lastForm.Image.Name != "shoe.png" || mock.lastImage != "png-bytes" {
		t.Fatalf("expected image uploaded, got %+v / %q", mock.lastForm.Image, mock.lastImage)
	}
}

func TestCatalogService_AddValidation(t *testing.T) {
	mock := &mockStoreAPI{}
	svc := NewCatalogService(zap.NewNop(), mock)
	img := writeImage(t)

	cases := []ProductInput{
		{CategoryID: "c1", Price: "10", ImagePath: img},
		{Name: "Shoe", Price: "10", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "ten", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "-3", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "NaN", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "Inf", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "-Infinity", ImagePath: img},
		{Name: "Shoe", CategoryID: "c1", Price: "10"},
		{Name: "Shoe", CategoryID: "c1", Price: "10", ImagePath: filepath.Join(t.TempDir(), "missing.png")},
	}
	for _, in := range cases {
		var verr *domain.ValidationError
		if err := svc.Add(context.Background(), in); !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
	if len(mock.calls) != 0 {
		t.Fatalf("expected no api calls, got %v", mock.calls)
	}
}

func TestCatalogService_UpdateKeepsExistingImage(t *testing.T) {
	mock := &mockStoreAPI{}
	svc := NewCatalogService(zap.NewNop(), mock)

	err := svc.Update(context.Background(), "p1", ProductInput{
		Name:          "Shoe",
		CategoryID:    "c1",
		Price:         "10",
		ExistingImage: "uploads/shoe.png",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if mock.calls[0] != "update:p1" || mock.lastForm.Image != nil || mock.lastForm.ImageRef != "uploads/shoe.png" {
		t.Fatalf("expected existing image reference, got %+v", mock.lastForm)
	}

	img := writeImage(t)
	if err := svc.Update(context.Background(), "p1", ProductInput{
		Name: "Shoe", CategoryID: "c1", Price: "10", ImagePath: img, ExistingImage: "uploads/shoe.png",
	}); err != nil {
		t.Fatalf("update with new image: %v", err)
	}
	if mock.lastForm.Image == nil || mock.lastImage != "png-bytes" {
		t.Fatalf("expected new image uploaded")
	}
}

func TestCatalogService_UpdateRequiresImageWhenNoneExists(t *testing.T) {
	svc := NewCatalogService(zap.NewNop(), &mockStoreAPI{})
	err := svc.Update(context.Background(), "p1", ProductInput{Name: "Shoe", CategoryID: "c1", Price: "10"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.Update(context.Background(), "", ProductInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing id, got %v", err)
	}
}

func TestCatalogService_PropagatesServerErrors(t *testing.T) {
	mock := &mockStoreAPI{catalogErr: &api.ServerError{Status: 500, Message: "boom"}}
	svc := NewCatalogService(zap.NewNop(), mock)

	_, err := svc.Products(context.Background())
	var se *api.ServerError
	if !errors.As(err, &se) || se.Message != "boom" {
		t.Fatalf("expected wrapped server error, got %v", err)
	}
	if err := svc.Delete(context.Background(), "p1"); !errors.As(err, &se) {
		t.Fatalf("expected wrapped server error on delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}
