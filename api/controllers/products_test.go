package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubProductService struct {
	productsvc.Service
	addTiers   func(ctx context.Context, productID uuid.UUID, tiers []productsvc.TierInput) ([]productsvc.DiscountTierDTO, error)
	listTiers  func(ctx context.Context, productID uuid.UUID) ([]productsvc.DiscountTierDTO, error)
	removeTier func(ctx context.Context, productID, tierID uuid.UUID) error
}

func (s *stubProductService) AddDiscountTiers(ctx context.Context, productID uuid.UUID, tiers []productsvc.TierInput) ([]productsvc.DiscountTierDTO, error) {
	return s.addTiers(ctx, productID, tiers)
}

func (s *stubProductService) ListDiscountTiers(ctx context.Context, productID uuid.UUID) ([]productsvc.DiscountTierDTO, error) {
	return s.listTiers(ctx, productID)
}

func (s *stubProductService) RemoveDiscountTier(ctx context.Context, productID, tierID uuid.UUID) error {
	return s.removeTier(ctx, productID, tierID)
}

func TestAddDiscountTiers(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("forwards tiers", func(t *testing.T) {
		var got []productsvc.TierInput
		svc := &stubProductService{addTiers: func(_ context.Context, id uuid.UUID, tiers []productsvc.TierInput) ([]productsvc.DiscountTierDTO, error) {
			if id != productID {
				t.Fatalf("unexpected product id %s", id)
			}
			got = tiers
			return []productsvc.DiscountTierDTO{{ProductID: id, StartRange: 1, EndRange: 5, DiscountPercent: "10"}}, nil
		}}
		body := `{"productId":"` + productID.String() + `","discountTiers":[{"startRange":1,"endRange":5,"discount":"10%"},{"startRange":6,"endRange":10,"discount":"20%"}]}`
		rec := serve(AddDiscountTiers(svc, logg), newRequest(http.MethodPost, "/product/addDiscountTiers", body, requestOpts{}))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 2 || got[1].StartRange != 6 || got[1].Discount != "20%" {
			t.Fatalf("unexpected tiers forwarded: %+v", got)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		svc := &stubProductService{}
		body := `{"productId":"` + productID.String() + `","discountTiers":[{"startRange":10,"endRange":5,"discount":"10%"}]}`
		rec := serve(AddDiscountTiers(svc, logg), newRequest(http.MethodPost, "/product/addDiscountTiers", body, requestOpts{}))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != string(pkgerrors.CodeValidation) {
			t.Fatalf("expected validation code, got %s", code)
		}
	})

	t.Run("overlap conflict", func(t *testing.T) {
		svc := &stubProductService{addTiers: func(context.Context, uuid.UUID, []productsvc.TierInput) ([]productsvc.DiscountTierDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount range overlaps an existing tier")
		}}
		body := `{"productId":"` + productID.String() + `","discountTiers":[{"startRange":1,"endRange":5,"discount":"10%"}]}`
		rec := serve(AddDiscountTiers(svc, logg), newRequest(http.MethodPost, "/product/addDiscountTiers", body, requestOpts{}))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		rec := serve(AddDiscountTiers(nil, logg), newRequest(http.MethodPost, "/product/addDiscountTiers", `{}`, requestOpts{}))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestListDiscountTiersEmptyMessage(t *testing.T) {
	productID := uuid.New()
	svc := &stubProductService{listTiers: func(context.Context, uuid.UUID) ([]productsvc.DiscountTierDTO, error) {
		return nil, nil
	}}
	req := newRequest(http.MethodGet, "/product/dicounted-products/"+productID.String(), "", requestOpts{params: map[string]string{"productId": productID.String()}})
	rec := serve(ListDiscountTiers(svc, testLogger()), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data    []any  `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "No discount available" || len(body.Data) != 0 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRemoveDiscountTier(t *testing.T) {
	productID, tierID := uuid.New(), uuid.New()
	params := map[string]string{"productId": productID.String(), "discountTierId": tierID.String()}

	svc := &stubProductService{removeTier: func(_ context.Context, p, tier uuid.UUID) error {
		if p != productID || tier != tierID {
			t.Fatalf("unexpected ids %s %s", p, tier)
		}
		return nil
	}}
	rec := serve(RemoveDiscountTier(svc, testLogger()), newRequest(http.MethodDelete, "/product/remove", "", requestOpts{params: params}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	params["discountTierId"] = "not-a-uuid"
	rec = serve(RemoveDiscountTier(svc, testLogger()), newRequest(http.MethodDelete, "/product/remove", "", requestOpts{params: params}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid tier id, got %d", rec.Code)
	}
}
