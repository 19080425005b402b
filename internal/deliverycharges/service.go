package deliverycharges

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
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type Service interface {
	CreateCity(ctx context.Context, name string, status enums.ActiveStatus) (*CityDTO, error)
	ListCities(ctx context.Context, status *enums.ActiveStatus) ([]CityDTO, error)
	UpsertCharge(ctx context.Context, input ChargeInput) (*ChargeDTO, error)
	ListCharges(ctx context.Context, productID uuid.UUID) ([]ChargeDTO, error)
	LookupCharge(ctx context.Context, productID, sourceCityID, destinationCityID uuid.UUID) (*ChargeDTO, error)
	DeleteCharge(ctx context.Context, id uuid.UUID) error
}

type ChargeInput struct {
	ProductID         uuid.UUID
	SourceCityID      uuid.UUID
	DestinationCityID uuid.UUID
	Charge            decimal.Decimal
}

type CityDTO struct {
	ID     uuid.UUID          `json:"id"`
	Name   string             `json:"name"`
	Status enums.ActiveStatus `json:"status"`
}

type ChargeDTO struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	SourceCity      CityDTO   `json:"source_city"`
	DestinationCity CityDTO   `json:"destination_city"`
	DeliveryCharge  string    `json:"delivery_charge"`
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
		return nil, fmt.Errorf("delivery charge repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) CreateCity(ctx context.Context, name string, status enums.ActiveStatus) (*CityDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city name is required")
	}
	if status == "" {
		status = enums.ActiveStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid city status")
	}

	city := &models.City{Name: name, Status: status}
	if err := s.repo.CreateCity(ctx, city); err != nil {
		if pkgdb.IsUniqueViolation(err, "cities_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "city already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert city")
	}
	dto := newCityDTO(city)
	return &dto, nil
}

func (s *service) ListCities(ctx context.Context, status *enums.ActiveStatus) ([]CityDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid city status")
	}
	rows, err := s.repo.ListCities(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cities")
	}
	out := make([]CityDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newCityDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) UpsertCharge(ctx context.Context, input ChargeInput) (*ChargeDTO, error) {
	if input.Charge.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deliveryCharge must be non-negative")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	for _, cityID := range []uuid.UUID{input.SourceCityID, input.DestinationCityID} {
		city, err := s.repo.FindCity(ctx, cityID)
		if err != nil {
			return nil, notFoundOr(err, "city not found", "load city")
		}
		if city.Status != enums.ActiveStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("city %s is inactive", city.Name))
		}
	}

	charge := &models.DeliveryCharge{
		ProductID:         input.ProductID,
		SourceCityID:      input.SourceCityID,
		DestinationCityID: input.DestinationCityID,
		Charge:            input.Charge.Round(2),
	}
	if err := s.repo.UpsertCharge(ctx, charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: upsert delivery charge")
	}
	return s.LookupCharge(ctx, input.ProductID, input.SourceCityID, input.DestinationCityID)
}

func (s *service) ListCharges(ctx context.Context, productID uuid.UUID) ([]ChargeDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list delivery charges")
	}
	out := make([]ChargeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newChargeDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) LookupCharge(ctx context.Context, productID, sourceCityID, destinationCityID uuid.UUID) (*ChargeDTO, error) {
	charge, err := s.repo.FindRoute(ctx, productID, sourceCityID, destinationCityID)
	if err != nil {
		return nil, notFoundOr(err, "delivery charge not found", "load delivery charge")
	}
	dto := newChargeDTO(charge)
	return &dto, nil
}

func (s *service) DeleteCharge(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteCharge(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete delivery charge")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery charge not found")
	}
	return nil
}

func newCityDTO(city *models.City) CityDTO {
	return CityDTO{ID: city.ID, Name: city.Name, Status: city.Status}
}

func newChargeDTO(charge *models.DeliveryCharge) ChargeDTO {
	dto := ChargeDTO{
		ID:             charge.ID,
		ProductID:      charge.ProductID,
		DeliveryCharge: charge.Charge.StringFixed(2),
	}
	if charge.SourceCity != nil {
		dto.SourceCity = newCityDTO(charge.SourceCity)
	}
	if charge.DestinationCity != nil {
		dto.DestinationCity = newCityDTO(charge.DestinationCity)
	}
	return dto
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
