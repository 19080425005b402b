package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type Service interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context, filter Filter, params pagination.Params) (*CategoryList, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type CategoryInput struct {
	Name        string
	Description *string
	Status      enums.ActiveStatus
}

type ProductSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description,omitempty"`
	HasDiscount bool      `json:"has_discount"`
}

type CategoryDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Status      enums.ActiveStatus `json:"status"`
	Products    []ProductSummary   `json:"products"`
	CreatedAt   time.Time          `json:"created_at"`
}

type CategoryList struct {
	Categories []CategoryDTO   `json:"categories"`
	Page       pagination.Page `json:"page"`
}

type service struct {
	repo *Repository
	tx   pkgdb.TxRunner
}

func NewService(repo *Repository, tx pkgdb.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: input.Name, Description: input.Description, Status: input.Status}
	if err := s.repo.Create(ctx, category); err != nil {
		if pkgdb.IsUniqueViolation(err, "categories_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert category")
	}
	dto := newCategoryDTO(category, nil)
	return &dto, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load category")
	}
	products, err := s.repo.ListProducts(ctx, []uuid.UUID{id}, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category products")
	}
	dto := newCategoryDTO(category, products)
	return &dto, nil
}

// ListCategories pages through categories with their products. When a
// product name is given only matching products are attached, and categories
// without a match are skipped.
func (s *service) ListCategories(ctx context.Context, filter Filter, params pagination.Params) (*CategoryList, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	products, err := s.repo.ListProducts(ctx, ids, filter.ProductName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category products")
	}
	byCategory := make(map[uuid.UUID][]models.Product, len(rows))
	for _, product := range products {
		if product.CategoryID != nil {
			byCategory[*product.CategoryID] = append(byCategory[*product.CategoryID], product)
		}
	}

	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newCategoryDTO(&rows[i], byCategory[rows[i].ID]))
	}
	return &CategoryList{Categories: out, Page: params.PageOf(total)}, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"status":      input.Status,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "categories_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update category")
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return s.GetCategory(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category status")
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update category status")
	}
	if updated == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

// DeleteCategory removes the category and leaves its products uncategorised.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DetachProducts(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: detach category products")
		}
		deleted, err := txRepo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete category")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return err
}

func normalizeInput(input CategoryInput) (CategoryInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if input.Status == "" {
		input.Status = enums.ActiveStatusActive
	}
	if !input.Status.IsValid() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid category status")
	}
	return input, nil
}

func newCategoryDTO(category *models.Category, products []models.Product) CategoryDTO {
	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		summaries = append(summaries, ProductSummary{
			ID:          product.ID,
			Name:        product.Name,
			Price:       product.Price.StringFixed(2),
			Description: product.Description,
			HasDiscount: product.HasDiscount,
		})
	}
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Status:      category.Status,
		Products:    summaries,
		CreatedAt:   category.CreatedAt,
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
