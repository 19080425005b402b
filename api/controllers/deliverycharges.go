package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	deliverysvc "github.com/angelmondragon/storefront-backend/internal/deliverycharges"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type createCityRequest struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type upsertChargeRequest struct {
	ProductID         uuid.UUID        `json:"productId" validate:"required"`
	SourceCityID      uuid.UUID        `json:"sourceCityId" validate:"required"`
	DestinationCityID uuid.UUID        `json:"destinationCityId" validate:"required"`
	DeliveryCharge    *decimal.Decimal `json:"deliveryCharge" validate:"required"`
}

func CreateCity(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload createCityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		city, err := svc.CreateCity(r.Context(), payload.Name, enums.ActiveStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, city)
	}
}

func ListCities(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		status, err := parseOptionalActiveStatus(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cities, err := svc.ListCities(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cities)
	}
}

// UpsertDeliveryCharge sets the charge for a product on one route,
// replacing any existing value.
func UpsertDeliveryCharge(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload upsertChargeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		charge, err := svc.UpsertCharge(r.Context(), deliverysvc.ChargeInput{
			ProductID:         payload.ProductID,
			SourceCityID:      payload.SourceCityID,
			DestinationCityID: payload.DestinationCityID,
			Charge:            *payload.DeliveryCharge,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, charge)
	}
}

// GetDeliveryCharges lists a product's charges, or looks up a single route
// when both source and destination are given.
func GetDeliveryCharges(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		source, err := validators.ParseOptionalUUIDQuery(r, "source")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destination, err := validators.ParseOptionalUUIDQuery(r, "destination")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch {
		case source == nil && destination == nil:
			charges, err := svc.ListCharges(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, charges)
		case source != nil && destination != nil:
			charge, err := svc.LookupCharge(r.Context(), productID, *source, *destination)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, charge)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "source and destination must be provided together"))
		}
	}
}

func DeleteDeliveryCharge(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCharge(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func parseOptionalActiveStatus(r *http.Request) (*enums.ActiveStatus, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseActiveStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	return &status, nil
}
