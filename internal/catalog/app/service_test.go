package app

import (
	"context"
	"testing"

	"github.com/entregalabs/entrega/internal/catalog/domain"
)

type fakeRepo struct{}

func (fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) { return p, nil }
func (fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	return domain.Product{}, nil
}
func (fakeRepo) List(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return nil, nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(fakeRepo{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "   ", "x")
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("name is trimmed", func(t *testing.T) {
		p, err := svc.CreateProduct(context.Background(), "  Arroz 5kg  ", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "Arroz 5kg" {
			t.Fatalf("expected trimmed name, got %q", p.Name)
		}
	})

	t.Run("empty id -> invalid", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), " ")
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}
