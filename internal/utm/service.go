package utm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*LinkDTO, error)
	List(ctx context.Context, status *enums.ActiveStatus, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) (*LinkDTO, error)
	Track(ctx context.Context, medium, campaign string) error
}

type CreateInput struct {
	BaseURL    string
	Source     string
	Medium     string
	Campaign   string
	CouponCode *string
}

type LinkDTO struct {
	ID          uuid.UUID          `json:"id"`
	BaseURL     string             `json:"base_url"`
	Source      string             `json:"source"`
	Medium      string             `json:"medium"`
	Campaign    string             `json:"campaign"`
	UTMURL      string             `json:"utm_url"`
	CouponCode  *string            `json:"coupon_code,omitempty"`
	Traffic     int64              `json:"traffic"`
	HasPurchase bool               `json:"has_purchase"`
	Status      enums.ActiveStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}

type ListResult struct {
	Links []LinkDTO       `json:"links"`
	Page  pagination.Page `json:"page"`
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("utm repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*LinkDTO, error) {
	source := strings.TrimSpace(input.Source)
	medium := strings.TrimSpace(input.Medium)
	campaign := strings.TrimSpace(input.Campaign)
	if source == "" || medium == "" || campaign == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source, medium and campaign are required")
	}

	built, err := BuildURL(input.BaseURL, source, medium, campaign)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid baseUrl")
	}

	var coupon *string
	if input.CouponCode != nil {
		if trimmed := strings.TrimSpace(*input.CouponCode); trimmed != "" {
			coupon = &trimmed
		}
	}

	link := &models.UTMLink{
		BaseURL:    strings.TrimSpace(input.BaseURL),
		Source:     source,
		Medium:     medium,
		Campaign:   campaign,
		URL:        built,
		CouponCode: coupon,
		Status:     enums.ActiveStatusActive,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert utm link")
	}
	dto := newLinkDTO(link)
	return &dto, nil
}

func (s *service) List(ctx context.Context, status *enums.ActiveStatus, params pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list utm links")
	}
	out := make([]LinkDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newLinkDTO(&rows[i]))
	}
	return &ListResult{Links: out, Page: params.PageOf(total)}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) (*LinkDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update utm status")
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "utm link not found")
	}
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "utm link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load utm link")
	}
	dto := newLinkDTO(link)
	return &dto, nil
}

// Track records a visit for the medium and campaign. Inactive or unknown
// campaigns are reported as not found.
func (s *service) Track(ctx context.Context, medium, campaign string) error {
	medium = strings.TrimSpace(medium)
	campaign = strings.TrimSpace(campaign)
	if medium == "" || campaign == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "utm_medium and utm_campaign are required")
	}
	matched, err := s.repo.IncrementTraffic(ctx, medium, campaign)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: increment utm traffic")
	}
	if matched == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	return nil
}

func newLinkDTO(link *models.UTMLink) LinkDTO {
	return LinkDTO{
		ID:          link.ID,
		BaseURL:     link.BaseURL,
		Source:      link.Source,
		Medium:      link.Medium,
		Campaign:    link.Campaign,
		UTMURL:      link.URL,
		CouponCode:  link.CouponCode,
		Traffic:     link.Traffic,
		HasPurchase: link.HasPurchase,
		Status:      link.Status,
		CreatedAt:   link.CreatedAt,
	}
}
