package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/inventory"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/types"
)

type inventoryItemRequest struct {
	ProductName  string          `json:"product_name" validate:"required,max=160"`
	Category     string          `json:"category" validate:"required,max=80"`
	Unit         string          `json:"unit" validate:"required,max=20"`
	CurrentStock float64         `json:"current_stock" validate:"gte=0"`
	MinThreshold float64         `json:"min_threshold" validate:"gte=0"`
	MaxCapacity  float64         `json:"max_capacity" validate:"gt=0"`
	UsageRate    float64         `json:"usage_rate" validate:"gte=0"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit" validate:"gte=0"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
}

type inventoryUpdateRequest struct {
	ProductName  *string            `json:"product_name" validate:"omitempty,max=160"`
	Category     *string            `json:"category" validate:"omitempty,max=80"`
	Unit         *string            `json:"unit" validate:"omitempty,max=20"`
	CurrentStock *float64           `json:"current_stock" validate:"omitempty,gte=0"`
	MinThreshold *float64           `json:"min_threshold" validate:"omitempty,gte=0"`
	MaxCapacity  *float64           `json:"max_capacity" validate:"omitempty,gt=0"`
	UsageRate    *float64           `json:"usage_rate" validate:"omitempty,gte=0"`
	CostPerUnit  *decimal.Decimal   `json:"cost_per_unit"`
	SupplierID   types.NullableUUID `json:"supplier_id"`
}

type restockRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), actor.AccountID, strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseURLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), actor.AccountID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CreateInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req inventoryItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), actor.AccountID, inventory.ItemInput{
			ProductName:  req.ProductName,
			Category:     req.Category,
			Unit:         req.Unit,
			CurrentStock: req.CurrentStock,
			MinThreshold: req.MinThreshold,
			MaxCapacity:  req.MaxCapacity,
			UsageRate:    req.UsageRate,
			CostPerUnit:  req.CostPerUnit,
			SupplierID:   req.SupplierID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// UpdateInventoryItem applies a partial update; "supplier_id": null unlinks the supplier.
func UpdateInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseURLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req inventoryUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), actor.AccountID, itemID, inventory.UpdateInput{
			ProductName:  req.ProductName,
			Category:     req.Category,
			Unit:         req.Unit,
			CurrentStock: req.CurrentStock,
			MinThreshold: req.MinThreshold,
			MaxCapacity:  req.MaxCapacity,
			UsageRate:    req.UsageRate,
			CostPerUnit:  req.CostPerUnit,
			SupplierID:   req.SupplierID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func DeleteInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseURLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor.AccountID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func RestockInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseURLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Restock(r.Context(), actor.AccountID, itemID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func InventorySummary(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		summary, err := svc.Summary(r.Context(), actor.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// InventoryAlerts returns reorder alerts, most urgent first.
func InventoryAlerts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		alerts, err := svc.Alerts(r.Context(), actor.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alerts)
	}
}
