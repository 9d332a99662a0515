package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/accounts"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type updateProfileRequest struct {
	BusinessName     *string          `json:"business_name" validate:"omitempty,max=120"`
	OwnerName        *string          `json:"owner_name" validate:"omitempty,max=120"`
	Email            *string          `json:"email" validate:"omitempty,email"`
	Address          *string          `json:"address"`
	City             *string          `json:"city"`
	State            *string          `json:"state"`
	Pincode          *string          `json:"pincode" validate:"omitempty,len=6,numeric"`
	BusinessType     *string          `json:"business_type"`
	YearsInBusiness  *int             `json:"years_in_business" validate:"omitempty,gte=0"`
	Description      *string          `json:"description"`
	GSTNumber        *string          `json:"gst_number"`
	FSSAILicense     *string          `json:"fssai_license"`
	Categories       *[]string        `json:"categories"`
	MinOrderValue    *decimal.Decimal `json:"min_order_value"`
	DeliveryRadiusKM *int             `json:"delivery_radius_km" validate:"omitempty,gte=0"`
}

func (r updateProfileRequest) toInput() accounts.UpdateProfileInput {
	return accounts.UpdateProfileInput{
		BusinessName:     r.BusinessName,
		OwnerName:        r.OwnerName,
		Email:            r.Email,
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		Pincode:          r.Pincode,
		BusinessType:     r.BusinessType,
		YearsInBusiness:  r.YearsInBusiness,
		Description:      r.Description,
		GSTNumber:        r.GSTNumber,
		FSSAILicense:     r.FSSAILicense,
		Categories:       r.Categories,
		MinOrderValue:    r.MinOrderValue,
		DeliveryRadiusKM: r.DeliveryRadiusKM,
	}
}

// GetMyProfile returns the authenticated account.
func GetMyProfile(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		profile, err := svc.GetProfile(r.Context(), actor.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func UpdateMyProfile(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req updateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.UpdateProfile(r.Context(), actor.AccountID, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ListSuppliers supports city, category and verified filters.
func ListSuppliers(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		verified, err := validators.ParseQueryBool(r, "verified")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		result, err := svc.ListSuppliers(r.Context(), accounts.ListSuppliersInput{
			City:       strings.TrimSpace(q.Get("city")),
			Category:   strings.TrimSpace(q.Get("category")),
			Verified:   verified,
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
