package reviews

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

const (
	minRating = 1
	maxRating = 5
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, reviewID uuid.UUID, status enums.ReviewStatus) (*ReviewDTO, error)
}

type CreateInput struct {
	ProductID uuid.UUID
	Rating    int
	Body      string
}

type ReviewDTO struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	ProductID uuid.UUID          `json:"product_id"`
	Rating    int                `json:"rating"`
	Review    string             `json:"review"`
	Status    enums.ReviewStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type ListResult struct {
	Reviews []ReviewDTO     `json:"reviews"`
	Page    pagination.Page `json:"page"`
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
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, products: products}, nil
}

// Create stores a pending review. A user may review a product once.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "rating must be between %d and %d", minRating, maxRating)
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Body:      strings.TrimSpace(input.Body),
		Status:    enums.ReviewStatusPending,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if pkgdb.IsUniqueViolation(err, "reviews_user_product_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert review")
	}
	dto := toDTO(review)
	return &dto, nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return &ListResult{Reviews: out, Page: params.PageOf(total)}, nil
}

func (s *service) UpdateStatus(ctx context.Context, reviewID uuid.UUID, status enums.ReviewStatus) (*ReviewDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid review status %q", status)
	}
	updated, err := s.repo.UpdateStatus(ctx, reviewID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update review status")
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload review")
	}
	dto := toDTO(review)
	return &dto, nil
}

func toDTO(review *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        review.ID,
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Review:    review.Body,
		Status:    review.Status,
		CreatedAt: review.CreatedAt,
	}
}
