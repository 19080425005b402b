package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCartService struct {
	cartsvc.Service
	add    func(ctx context.Context, userID uuid.UUID, input cartsvc.ItemInput) (*cartsvc.LineDTO, error)
	remove func(ctx context.Context, userID, productID uuid.UUID) error
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.ItemInput) (*cartsvc.LineDTO, error) {
	return s.add(ctx, userID, input)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.remove(ctx, userID, productID)
}

func TestCartAddItem(t *testing.T) {
	logg := testLogger()
	userID, productID := uuid.New(), uuid.New()
	body := `{"productId":"` + productID.String() + `","quantity":15}`

	t.Run("missing user", func(t *testing.T) {
		rec := serve(CartAddItem(&stubCartService{}, logg), newRequest(http.MethodPost, "/cart/add", body, requestOpts{}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		bad := `{"productId":"` + productID.String() + `","quantity":0}`
		rec := serve(CartAddItem(&stubCartService{}, logg), newRequest(http.MethodPost, "/cart/add", bad, requestOpts{userID: userID.String()}))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		svc := &stubCartService{add: func(_ context.Context, uid uuid.UUID, input cartsvc.ItemInput) (*cartsvc.LineDTO, error) {
			if uid != userID || input.ProductID != productID || input.Quantity != 15 {
				t.Fatalf("unexpected input %s %+v", uid, input)
			}
			return &cartsvc.LineDTO{ProductID: productID, Quantity: 15, DiscountedPrice: "85.00"}, nil
		}}
		rec := serve(CartAddItem(svc, logg), newRequest(http.MethodPost, "/cart/add", body, requestOpts{userID: userID.String()}))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate line", func(t *testing.T) {
		svc := &stubCartService{add: func(context.Context, uuid.UUID, cartsvc.ItemInput) (*cartsvc.LineDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart, update the quantity instead")
		}}
		rec := serve(CartAddItem(svc, logg), newRequest(http.MethodPost, "/cart/add", body, requestOpts{userID: userID.String()}))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestCartRemoveItemAcceptsQueryOrBody(t *testing.T) {
	userID, productID := uuid.New(), uuid.New()
	var removed []uuid.UUID
	svc := &stubCartService{remove: func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
		removed = append(removed, id)
		return nil
	}}
	opts := requestOpts{userID: userID.String()}

	rec := serve(CartRemoveItem(svc, testLogger()), newRequest(http.MethodDelete, "/cart/delete?productId="+productID.String(), "", opts))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for query form, got %d", rec.Code)
	}

	rec = serve(CartRemoveItem(svc, testLogger()), newRequest(http.MethodDelete, "/cart/delete", `{"productId":"`+productID.String()+`"}`, opts))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for body form, got %d", rec.Code)
	}

	if len(removed) != 2 || removed[0] != productID || removed[1] != productID {
		t.Fatalf("unexpected removals %v", removed)
	}
}
