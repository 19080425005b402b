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

type stubQuotationService struct {
	productsvc.Service
	quotation func(ctx context.Context, lines []productsvc.QuotationLineInput) (*productsvc.QuotationDTO, error)
}

func (s *stubQuotationService) Quotation(ctx context.Context, lines []productsvc.QuotationLineInput) (*productsvc.QuotationDTO, error) {
	return s.quotation(ctx, lines)
}

func quotationBody(productID uuid.UUID, email string) string {
	return `{"products":[{"productId":"` + productID.String() + `","quantity":15,"color":"grey","weight":"50kg"}],` +
		`"quotation":{"invoiceNo":"Q-100","date":"2026-10-16"},` +
		`"billFrom":{"billFromAddress":"1 Mall Road","billFromPhone":"0300","billFromEmail":"` + email + `"},` +
		`"billTo":{"billToName":"Asim","billToPhone":"0301","billToAddress":"2 Canal Road"}}`
}

func TestQuotation(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("prices lines and echoes billing details", func(t *testing.T) {
		var got []productsvc.QuotationLineInput
		svc := &stubQuotationService{quotation: func(_ context.Context, lines []productsvc.QuotationLineInput) (*productsvc.QuotationDTO, error) {
			got = lines
			return &productsvc.QuotationDTO{
				Lines:               []productsvc.QuotationLineDTO{{ProductID: productID, Quantity: 15, FinalPrice: "85.00", Total: "1275.00"}},
				TotalQuotationValue: "1275.00",
			}, nil
		}}
		rec := serve(Quotation(svc, logg), newRequest(http.MethodPost, "/quotation", quotationBody(productID, "sales@example.com"), requestOpts{}))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 1 || got[0].Quantity != 15 || got[0].Color != "grey" {
			t.Fatalf("unexpected lines forwarded: %+v", got)
		}

		var body struct {
			Data struct {
				Quotation struct {
					InvoiceNo string `json:"invoiceNo"`
				} `json:"quotation_details"`
				Total string `json:"total_quotation_value"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Data.Quotation.InvoiceNo != "Q-100" || body.Data.Total != "1275.00" {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("invalid bill from email", func(t *testing.T) {
		rec := serve(Quotation(&stubQuotationService{}, logg), newRequest(http.MethodPost, "/quotation", quotationBody(productID, "not-an-email"), requestOpts{}))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty product list", func(t *testing.T) {
		body := `{"products":[],"quotation":{"invoiceNo":"Q","date":"d"},"billFrom":{"billFromAddress":"a","billFromPhone":"p","billFromEmail":"a@b.co"},"billTo":{"billToName":"n","billToPhone":"p","billToAddress":"a"}}`
		rec := serve(Quotation(&stubQuotationService{}, logg), newRequest(http.MethodPost, "/quotation", body, requestOpts{}))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := &stubQuotationService{quotation: func(context.Context, []productsvc.QuotationLineInput) (*productsvc.QuotationDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}}
		rec := serve(Quotation(svc, logg), newRequest(http.MethodPost, "/quotation", quotationBody(productID, "sales@example.com"), requestOpts{}))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
