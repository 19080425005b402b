package favourites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type FavouriteDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	HasDiscount bool      `json:"has_discount"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListResult struct {
	Favourites []FavouriteDTO  `json:"favourites"`
	Page       pagination.Page `json:"page"`
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLookup
}

func NewService(repo *Repository, products productLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favourites repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check favourite")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "product already in favourites")
	}

	if err := s.repo.Add(ctx, &models.Favourite{UserID: userID, ProductID: productID}); err != nil {
		if pkgdb.IsUniqueViolation(err, "favourites_user_product_key") {
			return pkgerrors.New(pkgerrors.CodeConflict, "product already in favourites")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert favourite")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete favourite")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "favourite not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	records, total, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favourites")
	}
	out := make([]FavouriteDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, FavouriteDTO{
			ID:          rec.FavouriteID,
			ProductID:   rec.ProductID,
			Name:        rec.Name,
			Price:       rec.Price.StringFixed(2),
			HasDiscount: rec.HasDiscount,
			CreatedAt:   rec.FavouredAt,
		})
	}
	return &ListResult{Favourites: out, Page: params.PageOf(total)}, nil
}
