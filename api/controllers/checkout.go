package controllers

import (
	"net/http"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/checkout"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type checkoutRequest struct {
	DeliveryAddress string  `json:"delivery_address" validate:"max=500"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
}

// Checkout turns the caller's cart into one order per supplier.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "checkout")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Execute(r.Context(), actor.AccountID, checkout.CheckoutInput{
			DeliveryAddress: validators.SanitizeString(req.DeliveryAddress, 500),
			Notes:           req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "order_count", len(result.Orders)), "checkout.completed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
