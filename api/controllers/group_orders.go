package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/grouporders"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type createGroupOrderRequest struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"required"`
	Title           string          `json:"title" validate:"required,max=160"`
	Description     *string         `json:"description"`
	TargetQuantity  int             `json:"target_quantity" validate:"gt=0"`
	GroupPrice      decimal.Decimal `json:"group_price" validate:"gt=0"`
	EndTime         time.Time       `json:"end_time" validate:"required"`
	MinJoinQuantity int             `json:"min_join_quantity" validate:"gte=0"`
	MaxJoinQuantity int             `json:"max_join_quantity" validate:"gte=0"`
}

type joinGroupOrderRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type cancelGroupOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ListGroupOrders lists group orders; mine=true narrows to the caller's own
// (suppliers: created, vendors: joined).
func ListGroupOrders(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mine, err := validators.ParseQueryBool(r, "mine")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		params := grouporders.ListParams{
			Status:     strings.TrimSpace(q.Get("status")),
			Category:   strings.TrimSpace(q.Get("category")),
			SupplierID: supplierID,
			Limit:      page.Limit,
			Cursor:     page.Cursor,
		}
		if mine != nil && *mine {
			actor, ok := requireActor(w, r, logg)
			if !ok {
				return
			}
			id := actor.AccountID
			if actor.AccountType == enums.AccountTypeSupplier {
				params.SupplierID = &id
			} else {
				params.ParticipantID = &id
			}
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		id, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CreateGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req createGroupOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), actor.AccountID, grouporders.CreateInput{
			ProductID:       req.ProductID,
			Title:           req.Title,
			Description:     req.Description,
			TargetQuantity:  req.TargetQuantity,
			GroupPrice:      req.GroupPrice,
			EndTime:         req.EndTime,
			MinJoinQuantity: req.MinJoinQuantity,
			MaxJoinQuantity: req.MaxJoinQuantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// JoinGroupOrder adds the calling vendor as a participant.
func JoinGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req joinGroupOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Join(r.Context(), actor.AccountID, id, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CancelGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelGroupOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Cancel(r.Context(), actor.AccountID, id, validators.SanitizeString(req.Reason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func GroupOrderSavings(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group orders")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		savings, err := svc.ParticipantSavings(r.Context(), id, actor.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"group_order_id": id,
			"savings":        savings,
		})
	}
}
