package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service settles cart lines. Prices are captured when a line is added or its
// quantity changes and are not re-evaluated on read.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, input ItemInput) (*LineDTO, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, input ItemInput) (*LineDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ListItems(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type pricer interface {
	Quote(ctx context.Context, productID uuid.UUID, quantity int) (*products.Quote, error)
}

type service struct {
	repo   *Repository
	pricer pricer
}

func NewService(repo *Repository, pricer pricer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricer required")
	}
	return &service{repo: repo, pricer: pricer}, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input ItemInput) (*LineDTO, error) {
	if _, err := s.repo.FindLine(ctx, userID, input.ProductID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart, update the quantity instead")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}

	quote, err := s.pricer.Quote(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return nil, err
	}

	line := &models.CartLine{
		UserID:       userID,
		ProductID:    input.ProductID,
		Quantity:     input.Quantity,
		SettledPrice: quote.SettledPrice,
	}
	if err := s.repo.CreateLine(ctx, line); err != nil {
		if pkgdb.IsUniqueViolation(err, "cart_lines_user_product_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart, update the quantity instead")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert cart line")
	}
	return quotedLine(line, quote), nil
}

// UpdateItem re-resolves the discount for the new quantity from the current
// catalog price, never from the previously settled price.
func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, input ItemInput) (*LineDTO, error) {
	line, err := s.repo.FindLine(ctx, userID, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}

	quote, err := s.pricer.Quote(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return nil, err
	}

	line.Quantity = input.Quantity
	line.SettledPrice = quote.SettledPrice
	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update cart line")
	}
	return quotedLine(line, quote), nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	deleted, err := s.repo.DeleteLine(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete cart line")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) ListItems(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}
	return newCartDTO(lines), nil
}

func quotedLine(line *models.CartLine, quote *products.Quote) *LineDTO {
	dto := newLineDTO(line)
	dto.ProductName = quote.ProductName
	dto.SingleProductPrice = quote.UnitPrice.StringFixed(2)
	dto.DiscountPercent = quote.DiscountPercent.String()
	return &dto
}
