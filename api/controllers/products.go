package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	product "github.com/AadiSharma49/Street-Food-Solution/internal/products"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type createProductRequest struct {
	Name             string          `json:"name" validate:"required,max=160"`
	Category         string          `json:"category" validate:"required,max=80"`
	Price            decimal.Decimal `json:"price" validate:"gt=0"`
	Unit             string          `json:"unit" validate:"required,max=20"`
	StockQuantity    int             `json:"stock_quantity" validate:"gte=0"`
	MinOrderQuantity int             `json:"min_order_quantity" validate:"gte=0"`
	Description      *string         `json:"description"`
	ImageURL         *string         `json:"image_url" validate:"omitempty,url"`
	Status           string          `json:"status" validate:"omitempty,oneof=active inactive out_of_stock"`
}

type updateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,max=160"`
	Category         *string          `json:"category" validate:"omitempty,max=80"`
	Price            *decimal.Decimal `json:"price"`
	Unit             *string          `json:"unit" validate:"omitempty,max=20"`
	StockQuantity    *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinOrderQuantity *int             `json:"min_order_quantity" validate:"omitempty,gte=0"`
	Description      *string          `json:"description"`
	ImageURL         *string          `json:"image_url" validate:"omitempty,url"`
	Status           *string          `json:"status" validate:"omitempty,oneof=active inactive out_of_stock"`
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
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
		q := r.URL.Query()
		result, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Category:   strings.TrimSpace(q.Get("category")),
			SupplierID: supplierID,
			Search:     validators.SanitizeString(q.Get("q"), 80),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
			return
		}
		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CompareProductPrices lists offers for a product name, cheapest first.
func CompareProductPrices(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
			return
		}
		name := validators.SanitizeString(r.URL.Query().Get("name"), 160)
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name is required"))
			return
		}
		comparison, err := svc.ComparePrices(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comparison)
	}
}

func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := product.CreateProductInput{
			Name:             req.Name,
			Category:         req.Category,
			Price:            req.Price,
			Unit:             req.Unit,
			StockQuantity:    req.StockQuantity,
			MinOrderQuantity: req.MinOrderQuantity,
			Description:      req.Description,
			ImageURL:         req.ImageURL,
			Status:           enums.ProductStatus(req.Status),
		}
		dto, err := svc.CreateProduct(r.Context(), actor.AccountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := product.UpdateProductInput{
			Name:             req.Name,
			Category:         req.Category,
			Price:            req.Price,
			Unit:             req.Unit,
			StockQuantity:    req.StockQuantity,
			MinOrderQuantity: req.MinOrderQuantity,
			Description:      req.Description,
			ImageURL:         req.ImageURL,
		}
		if req.Status != nil {
			status := enums.ProductStatus(*req.Status)
			input.Status = &status
		}
		dto, err := svc.UpdateProduct(r.Context(), actor.AccountID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "products")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), actor.AccountID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
