package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads and discount tier management.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDetailDTO, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	AddDiscountTiers(ctx context.Context, productID uuid.UUID, tiers []TierInput) ([]DiscountTierDTO, error)
	ListDiscountTiers(ctx context.Context, productID uuid.UUID) ([]DiscountTierDTO, error)
	RemoveDiscountTier(ctx context.Context, productID, tierID uuid.UUID) error
	ResolveDiscount(ctx context.Context, productID uuid.UUID, quantity int) (decimal.Decimal, error)
	Quote(ctx context.Context, productID uuid.UUID, quantity int) (*Quote, error)
	Quotation(ctx context.Context, lines []QuotationLineInput) (*QuotationDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID  *uuid.UUID
	Name        string
	Description *string
	Price       decimal.Decimal
}

// QuotationLineInput is one product of a quotation request. Color and Weight
// are carried through to the rendered line untouched.
type QuotationLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Color     string
	Weight    string
}

// TierInput is one requested discount band. Discount is the raw "NN%" text.
type TierInput struct {
	StartRange int
	EndRange   int
	Discount   string
}

type ratingReader interface {
	ApprovedRatingSummary(ctx context.Context, productID uuid.UUID) (average float64, count int64, err error)
}

type service struct {
	repo     *Repository
	tx       pkgdb.TxRunner
	ratings  ratingReader
	recorder *metrics.PricingMetrics
}

// NewService constructs a product service instance. recorder may be nil.
func NewService(repo *Repository, tx pkgdb.TxRunner, ratings ratingReader, recorder *metrics.PricingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ratings == nil {
		return nil, fmt.Errorf("rating reader required")
	}
	return &service{repo: repo, tx: tx, ratings: ratings, recorder: recorder}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	if input.CategoryID != nil {
		exists, err := s.repo.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDetailDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.repo.ListDiscountTiers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount tiers")
	}

	avg, count, err := s.ratings.ApprovedRatingSummary(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating summary")
	}

	detail := &ProductDetailDTO{
		ProductDTO:    NewProductDTO(product),
		DiscountTiers: newDiscountTierDTOs(tiers, product.Price),
		ReviewCount:   count,
	}
	if count > 0 {
		detail.AverageRating = &avg
	}
	return detail, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	rows, total, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: out, Page: params.PageOf(total)}, nil
}

// AddDiscountTiers inserts the whole batch or nothing. The product row is
// locked for the duration so concurrent batches for it are serialized.
func (s *service) AddDiscountTiers(ctx context.Context, productID uuid.UUID, tiers []TierInput) ([]DiscountTierDTO, error) {
	if len(tiers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one discount tier is required")
	}

	rows := make([]models.DiscountTier, 0, len(tiers))
	for i, tier := range tiers {
		if tier.StartRange < 1 || tier.EndRange < tier.StartRange {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "discount tier %d: range must satisfy 1 <= start <= end", i).
				WithDetails(map[string]any{"index": i, "start_range": tier.StartRange, "end_range": tier.EndRange})
		}
		percent, err := ParseDiscountPercent(tier.Discount)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.DiscountTier{
			ProductID:       productID,
			StartRange:      tier.StartRange,
			EndRange:        tier.EndRange,
			DiscountPercent: percent,
		})
	}

	var price decimal.Decimal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return notFoundOr(err, "load product")
		}
		price = product.Price

		existing, err := txRepo.ListDiscountTiers(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount tiers")
		}
		if candidate, clash := findOverlap(existing, tiers); candidate != nil {
			s.recorder.IncTierConflict()
			return pkgerrors.Newf(pkgerrors.CodeConflict,
				"discount range %d-%d overlaps existing range %d-%d",
				candidate.StartRange, candidate.EndRange, clash.StartRange, clash.EndRange)
		}

		if err := txRepo.CreateDiscountTiers(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert discount tiers")
		}
		if !product.HasDiscount {
			if err := txRepo.SetHasDiscount(ctx, productID, true); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: flag product discount")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add discount tiers")
	}

	return newDiscountTierDTOs(rows, price), nil
}

func (s *service) ListDiscountTiers(ctx context.Context, productID uuid.UUID) ([]DiscountTierDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.repo.ListDiscountTiers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount tiers")
	}
	return newDiscountTierDTOs(tiers, product.Price), nil
}

// RemoveDiscountTier deletes one tier; removing the last one clears the
// product's discount flag.
func (s *service) RemoveDiscountTier(ctx context.Context, productID, tierID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByIDForUpdate(ctx, productID); err != nil {
			return notFoundOr(err, "load product")
		}
		deleted, err := txRepo.DeleteDiscountTier(ctx, productID, tierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete discount tier")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount tier not found")
		}

		remaining, err := txRepo.CountDiscountTiers(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count discount tiers")
		}
		if remaining == 0 {
			if err := txRepo.SetHasDiscount(ctx, productID, false); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear product discount")
			}
		}
		return nil
	})
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove discount tier")
	}
	return err
}

// ResolveDiscount returns the discount percent that applies to quantity units
// of the product. A product without an active discount or without a matching
// tier resolves to zero.
func (s *service) ResolveDiscount(ctx context.Context, productID uuid.UUID, quantity int) (decimal.Decimal, error) {
	quote, err := s.Quote(ctx, productID, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.DiscountPercent, nil
}

// Quote resolves the discount for quantity and returns the settled unit price.
func (s *service) Quote(ctx context.Context, productID uuid.UUID, quantity int) (*Quote, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Quantity:        quantity,
		UnitPrice:       product.Price,
		DiscountPercent: decimal.Zero,
	}

	if !product.HasDiscount {
		s.recorder.ObserveResolution(metrics.OutcomeDisabled)
		quote.SettledPrice = ApplyDiscount(product.Price, decimal.Zero)
		return quote, nil
	}

	tiers, err := s.repo.ListDiscountTiers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount tiers")
	}
	if tier := SelectTier(product, tiers, quantity); tier != nil {
		s.recorder.ObserveResolution(metrics.OutcomeTier)
		tierID := tier.ID
		quote.TierID = &tierID
		quote.DiscountPercent = tier.DiscountPercent
	} else {
		s.recorder.ObserveResolution(metrics.OutcomeNoTier)
	}
	quote.SettledPrice = ApplyDiscount(product.Price, quote.DiscountPercent)
	return quote, nil
}

// Quotation prices every line through the same tier resolution as the cart.
// Line totals are rounded to cents before they are summed.
func (s *service) Quotation(ctx context.Context, lines []QuotationLineInput) (*QuotationDTO, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product details are required")
	}

	out := make([]QuotationLineDTO, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		quote, err := s.Quote(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		lineTotal := quote.SettledPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		total = total.Add(lineTotal)

		out = append(out, QuotationLineDTO{
			ProductID:       quote.ProductID,
			ProductName:     quote.ProductName,
			Quantity:        quote.Quantity,
			Color:           line.Color,
			Weight:          line.Weight,
			OriginalPrice:   quote.UnitPrice.StringFixed(2),
			FinalPrice:      quote.SettledPrice.StringFixed(2),
			DiscountPercent: quote.DiscountPercent.String() + "%",
			DiscountAmount:  quote.UnitPrice.Sub(quote.SettledPrice).StringFixed(2),
			Total:           lineTotal.StringFixed(2),
		})
	}
	return &QuotationDTO{Lines: out, TotalQuotationValue: total.StringFixed(2)}, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "load product")
	}
	return product, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
