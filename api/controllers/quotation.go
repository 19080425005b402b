package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type quotationRequest struct {
	Products  []quotationLineRequest `json:"products" validate:"required,min=1,dive"`
	Quotation quotationMeta          `json:"quotation"`
	BillFrom  billFromDetails        `json:"billFrom"`
	BillTo    billToDetails          `json:"billTo"`
}

type quotationLineRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Color     string    `json:"color" validate:"required"`
	Weight    string    `json:"weight" validate:"required"`
}

type quotationMeta struct {
	InvoiceNo string `json:"invoiceNo" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

type billFromDetails struct {
	Address string `json:"billFromAddress" validate:"required"`
	Phone   string `json:"billFromPhone" validate:"required"`
	Email   string `json:"billFromEmail" validate:"required,email"`
}

type billToDetails struct {
	Name    string `json:"billToName" validate:"required"`
	Phone   string `json:"billToPhone" validate:"required"`
	Address string `json:"billToAddress" validate:"required"`
}

type quotationResponse struct {
	Quotation quotationMeta   `json:"quotation_details"`
	BillFrom  billFromDetails `json:"bill_from_details"`
	BillTo    billToDetails   `json:"bill_to_details"`
	*productsvc.QuotationDTO
}

// Quotation prices a list of products for an offline quote.
func Quotation(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload quotationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]productsvc.QuotationLineInput, 0, len(payload.Products))
		for _, line := range payload.Products {
			lines = append(lines, productsvc.QuotationLineInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Color:     line.Color,
				Weight:    line.Weight,
			})
		}

		quotation, err := svc.Quotation(r.Context(), lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotationResponse{
			Quotation:    payload.Quotation,
			BillFrom:     payload.BillFrom,
			BillTo:       payload.BillTo,
			QuotationDTO: quotation,
		})
	}
}
