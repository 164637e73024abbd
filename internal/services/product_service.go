package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Pricing     *string `json:"pricing"`
}

type ProductService interface {
	List(ctx context.Context, scope tenancy.Scope) ([]*models.Product, error)
	Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, scope tenancy.Scope, in *ProductInput) (*models.Product, error)
	Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *ProductInput) (*models.Product, error)
	Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error
}

type productService struct {
	productRepo repositories.ProductRepository
	activity    ActivityService
}

func NewProductService(productRepo repositories.ProductRepository, activity ActivityService) ProductService {
	return &productService{productRepo: productRepo, activity: activity}
}

func validateProduct(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.ValidateRequiredString(in.Name, "name"); err != nil {
		return err
	}
	if len(in.Name) > 200 {
		return common.NewValidationError("name", "cannot exceed 200 characters")
	}
	if err := common.ValidateOptionalString(in.Description, "description", 5000); err != nil {
		return err
	}
	return common.ValidateOptionalString(in.Pricing, "pricing", 500)
}

func (s *productService) List(ctx context.Context, scope tenancy.Scope) ([]*models.Product, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.Product{}, nil
	}
	return nonNil(s.productRepo.List(ctx, startupID))
}

func (s *productService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Product, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.productRepo.GetByID(ctx, startupID, id)
}

func (s *productService) Create(ctx context.Context, scope tenancy.Scope, in *ProductInput) (*models.Product, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		StartupID:   startupID,
		Name:        in.Name,
		Description: in.Description,
		Pricing:     in.Pricing,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProductCreated,
		Description: fmt.Sprintf("Added product %s", product.Name),
		Metadata:    map[string]any{"product_id": product.ID.String()},
	})
	return product, nil
}

func (s *productService) Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *ProductInput) (*models.Product, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, startupID, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Pricing = in.Pricing
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProductUpdated,
		Description: fmt.Sprintf("Updated product %s", product.Name),
		Metadata:    map[string]any{"product_id": product.ID.String()},
	})
	return product, nil
}

func (s *productService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	product, err := s.productRepo.GetByID(ctx, startupID, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, startupID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProductDeleted,
		Description: fmt.Sprintf("Deleted product %s", product.Name),
		Metadata:    map[string]any{"product_id": id.String()},
	})
	return nil
}
