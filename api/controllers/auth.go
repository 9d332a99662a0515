package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/api/middleware"
	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/accounts"
	"github.com/AadiSharma49/Street-Food-Solution/internal/auth"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type sendOTPRequest struct {
	Phone   string `json:"phone" validate:"required,min=10,max=16"`
	Channel string `json:"channel" validate:"omitempty,oneof=sms whatsapp"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=16"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type registerRequest struct {
	Code             string          `json:"code" validate:"required,len=6,numeric"`
	Type             string          `json:"type" validate:"required,oneof=vendor supplier"`
	Phone            string          `json:"phone" validate:"required,min=10,max=16"`
	BusinessName     string          `json:"business_name" validate:"required,max=120"`
	OwnerName        string          `json:"owner_name" validate:"required,max=120"`
	Email            *string         `json:"email" validate:"omitempty,email"`
	Address          string          `json:"address" validate:"required"`
	City             string          `json:"city" validate:"required"`
	State            string          `json:"state" validate:"required"`
	Pincode          string          `json:"pincode" validate:"required,len=6,numeric"`
	BusinessType     string          `json:"business_type" validate:"required"`
	YearsInBusiness  int             `json:"years_in_business" validate:"gte=0"`
	Description      *string         `json:"description"`
	GSTNumber        *string         `json:"gst_number"`
	FSSAILicense     *string         `json:"fssai_license"`
	Categories       []string        `json:"categories"`
	MinOrderValue    decimal.Decimal `json:"min_order_value" validate:"gte=0"`
	DeliveryRadiusKM int             `json:"delivery_radius_km" validate:"gte=0"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthSendOTP issues a one-time code to the supplied phone.
func AuthSendOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		var req sendOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		channel, err := enums.ParseOTPChannel(req.Channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		result, err := svc.SendOTP(r.Context(), auth.SendOTPInput{
			Phone:    req.Phone,
			Channel:  channel,
			ClientIP: middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthVerifyOTP checks a code without creating a session.
func AuthVerifyOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		var req verifyOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.VerifyOTP(r.Context(), req.Phone, req.Code, middleware.ClientIP(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"verified": true})
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		var req verifyOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.Login(r.Context(), auth.LoginInput{
			Phone:    req.Phone,
			Code:     req.Code,
			ClientIP: middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthRegister verifies the code, creates the account and signs it in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountType, err := enums.ParseAccountType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
			return
		}

		resp, err := svc.Register(r.Context(), auth.RegisterInput{
			Code:     req.Code,
			ClientIP: middleware.ClientIP(r),
			Profile: accounts.RegisterInput{
				Type:             accountType,
				Phone:            req.Phone,
				BusinessName:     req.BusinessName,
				OwnerName:        req.OwnerName,
				Email:            req.Email,
				Address:          req.Address,
				City:             req.City,
				State:            req.State,
				Pincode:          req.Pincode,
				BusinessType:     req.BusinessType,
				YearsInBusiness:  req.YearsInBusiness,
				Description:      req.Description,
				GSTNumber:        req.GSTNumber,
				FSSAILicense:     req.FSSAILicense,
				Categories:       req.Categories,
				MinOrderValue:    req.MinOrderValue,
				DeliveryRadiusKM: req.DeliveryRadiusKM,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// AuthRefresh rotates the refresh token. The access token may be expired.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		access := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(access), "bearer ") {
			access = strings.TrimSpace(access[7:])
		}
		if access == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing access token"))
			return
		}
		var req refreshRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pair, err := svc.Refresh(r.Context(), access, req.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
