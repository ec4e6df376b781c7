package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
)

// ProductInput carries the editable fields of a product definition
type ProductInput struct {
	Name         string  `json:"name"`
	ProductType  string  `json:"product_type"`
	InterestRate float64 `json:"interest_rate"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
	MinDuration  int     `json:"min_duration"`
	MaxDuration  int     `json:"max_duration"`
	Description  string  `json:"description"`
	Active       bool    `json:"active"`
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationf("product name is required")
	}
	if in.ProductType != models.ProductTypeCredit && in.ProductType != models.ProductTypeSavings {
		return validationf("unknown product type %q", in.ProductType)
	}
	if in.InterestRate < 0 {
		return validationf("interest rate must not be negative")
	}
	if in.MinAmount < 0 || in.MaxAmount < in.MinAmount {
		return validationf("amount bounds must satisfy 0 <= min <= max")
	}
	if in.MinDuration < 0 || in.MaxDuration < in.MinDuration {
		return validationf("duration bounds must satisfy 0 <= min <= max")
	}
	return nil
}

// CreateProduct defines a new financial product
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanManageLifecycle(actor.Role) {
		return nil, fmt.Errorf("%w: insufficient role to manage products", ErrForbidden)
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         input.Name,
		ProductType:  input.ProductType,
		InterestRate: input.InterestRate,
		MinAmount:    input.MinAmount,
		MaxAmount:    input.MaxAmount,
		MinDuration:  input.MinDuration,
		MaxDuration:  input.MaxDuration,
		Description:  input.Description,
		Active:       input.Active,
		CreatedAt:    s.now(),
	}

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateProduct(ctx, product); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "create", "Product", product.ID,
			fmt.Sprintf("created %s product %q", product.ProductType, product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct edits a product definition
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanManageLifecycle(actor.Role) {
		return nil, fmt.Errorf("%w: insufficient role to manage products", ErrForbidden)
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	product.Name = input.Name
	product.ProductType = input.ProductType
	product.InterestRate = input.InterestRate
	product.MinAmount = input.MinAmount
	product.MaxAmount = input.MaxAmount
	product.MinDuration = input.MinDuration
	product.MaxDuration = input.MaxDuration
	product.Description = input.Description
	product.Active = input.Active

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.UpdateProduct(ctx, product); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "update", "Product", product.ID,
			fmt.Sprintf("updated product %q", product.Name))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	return product, nil
}

// GetProduct retrieves a product by id
func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	return product, nil
}

// ListProducts retrieves products, optionally filtered by type and active flag
func (s *Service) ListProducts(ctx context.Context, productType string, activeOnly bool) ([]models.Product, error) {
	if productType != "" && productType != models.ProductTypeCredit && productType != models.ProductTypeSavings {
		return nil, validationf("unknown product type %q", productType)
	}
	return s.repo.ListProducts(ctx, productType, activeOnly)
}
