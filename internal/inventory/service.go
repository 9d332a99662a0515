package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
)

const defaultAlertBatch = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a vendor's stock and its reorder alerts.
type Service interface {
	Create(ctx context.Context, vendorID uuid.UUID, input ItemInput) (*ItemView, error)
	Get(ctx context.Context, vendorID, itemID uuid.UUID) (*ItemView, error)
	List(ctx context.Context, vendorID uuid.UUID, category string) ([]ItemView, error)
	Update(ctx context.Context, vendorID, itemID uuid.UUID, input UpdateInput) (*ItemView, error)
	Delete(ctx context.Context, vendorID, itemID uuid.UUID) error
	Restock(ctx context.Context, vendorID, itemID uuid.UUID, quantity float64) (*ItemView, error)
	Summary(ctx context.Context, vendorID uuid.UUID) (*Summary, error)
	Alerts(ctx context.Context, vendorID uuid.UUID) ([]Alert, error)
	EmitLowStockAlerts(ctx context.Context, now time.Time) (int, error)
}

// ServiceParams names the dependencies of the inventory service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Outbox outbox.Emitter
	Config config.InventoryConfig
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outbox.Emitter
	cfg    config.InventoryConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		outbox: params.Outbox,
		cfg:    params.Config,
		logg:   params.Logger,
		now:    params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, input ItemInput) (*ItemView, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	item := &models.InventoryItem{
		VendorID:     vendorID,
		ProductName:  strings.TrimSpace(input.ProductName),
		Category:     strings.TrimSpace(input.Category),
		Unit:         strings.TrimSpace(input.Unit),
		CurrentStock: input.CurrentStock,
		MinThreshold: input.MinThreshold,
		MaxCapacity:  input.MaxCapacity,
		UsageRate:    input.UsageRate,
		CostPerUnit:  input.CostPerUnit,
		SupplierID:   input.SupplierID,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"vendor_id": vendorID.String(),
		"item_id":   item.ID.String(),
	}), "inventory item created")
	view := toView(item)
	return &view, nil
}

func (s *service) Get(ctx context.Context, vendorID, itemID uuid.UUID) (*ItemView, error) {
	item, err := s.load(ctx, s.repo, vendorID, itemID)
	if err != nil {
		return nil, err
	}
	view := toView(item)
	return &view, nil
}

func (s *service) List(ctx context.Context, vendorID uuid.UUID, category string) ([]ItemView, error) {
	items, err := s.repo.ListByVendor(ctx, vendorID, strings.TrimSpace(category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, toView(&items[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, vendorID, itemID uuid.UUID, input UpdateInput) (*ItemView, error) {
	item, err := s.load(ctx, s.repo, vendorID, itemID)
	if err != nil {
		return nil, err
	}
	if input.ProductName != nil {
		item.ProductName = strings.TrimSpace(*input.ProductName)
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.CurrentStock != nil {
		item.CurrentStock = *input.CurrentStock
	}
	if input.MinThreshold != nil {
		item.MinThreshold = *input.MinThreshold
	}
	if input.MaxCapacity != nil {
		item.MaxCapacity = *input.MaxCapacity
	}
	if input.UsageRate != nil {
		item.UsageRate = *input.UsageRate
	}
	if input.CostPerUnit != nil {
		item.CostPerUnit = *input.CostPerUnit
	}
	if input.SupplierID.Valid {
		item.SupplierID = input.SupplierID.Ptr()
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	view := toView(item)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, vendorID, itemID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, vendorID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return nil
}

// Restock adds quantity to the item and resets its alert cooldown.
func (s *service) Restock(ctx context.Context, vendorID, itemID uuid.UUID, quantity float64) (*ItemView, error) {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	item, err := s.load(ctx, s.repo, vendorID, itemID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	item.CurrentStock += quantity
	item.LastRestocked = &now
	item.LastAlertedAt = nil
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock inventory item")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"item_id":  itemID.String(),
		"quantity": quantity,
	}), "inventory item restocked")
	view := toView(item)
	return &view, nil
}

func (s *service) Summary(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	items, err := s.repo.ListByVendor(ctx, vendorID, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	summary := &Summary{TotalItems: len(items), TotalValue: decimal.Zero}
	for i := range items {
		item := &items[i]
		switch Classify(evaluatorItem(item)) {
		case enums.StockStatusOutOfStock:
			summary.OutOfStock++
		case enums.StockStatusLowStock:
			summary.LowStock++
		case enums.StockStatusOverstocked:
			summary.Overstocked++
		}
		summary.TotalValue = summary.TotalValue.Add(totalValue(item))
	}
	summary.CriticalCount = summary.OutOfStock + summary.LowStock
	return summary, nil
}

// Alerts ranks the vendor's items needing a reorder, most urgent first.
func (s *service) Alerts(ctx context.Context, vendorID uuid.UUID) ([]Alert, error) {
	items, err := s.repo.ListByVendor(ctx, vendorID, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	byID := make(map[uuid.UUID]*models.InventoryItem, len(items))
	evaluated := make([]Item, 0, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
		evaluated = append(evaluated, evaluatorItem(&items[i]))
	}

	ranked := RankAlerts(evaluated)
	alerts := make([]Alert, 0, len(ranked))
	for _, item := range ranked {
		view := toView(byID[item.ID])
		alerts = append(alerts, Alert{Item: view, Severity: Severity(view.Status)})
	}
	return alerts, nil
}

// EmitLowStockAlerts queues an inventory.low_stock event for every item that
// needs a reorder and has not been alerted within the cooldown.
func (s *service) EmitLowStockAlerts(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	items, err := s.repo.ListAlertCandidates(ctx, now.Add(-s.cfg.AlertCooldown), defaultAlertBatch)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alert candidates")
	}

	emitted := 0
	var errs error
	for i := range items {
		item := &items[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.outbox.Emit(ctx, tx, lowStockEvent(item)); err != nil {
				return err
			}
			return s.repo.WithTx(tx).MarkAlerted(ctx, item.ID, now)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}
		emitted++
	}
	if emitted > 0 {
		s.logg.Info(s.logg.WithField(ctx, "alerts", emitted), "low stock alerts queued")
	}
	return emitted, errs
}

func (s *service) load(ctx context.Context, repo Repository, vendorID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := repo.FindForVendor(ctx, vendorID, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return item, nil
}

func lowStockEvent(item *models.InventoryItem) outbox.DomainEvent {
	view := toView(item)
	return outbox.DomainEvent{
		EventType:     enums.EventInventoryLowStock,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: payloads.InventoryLowStockEvent{
			ItemID:       item.ID,
			VendorID:     item.VendorID,
			ProductName:  item.ProductName,
			Unit:         item.Unit,
			Status:       view.Status,
			Severity:     Severity(view.Status),
			CurrentStock: item.CurrentStock,
			DaysLeft:     view.EstimatedDaysLeft,
		},
	}
}

func validateItem(item *models.InventoryItem) error {
	switch {
	case item.ProductName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	case item.Unit == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	case item.CurrentStock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "current_stock must not be negative")
	case item.MinThreshold < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "min_threshold must not be negative")
	case item.MaxCapacity <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "max_capacity must be positive")
	case item.MinThreshold > item.MaxCapacity:
		return pkgerrors.New(pkgerrors.CodeValidation, "min_threshold must not exceed max_capacity")
	case item.UsageRate < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "usage_rate must not be negative")
	case item.CostPerUnit.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "cost_per_unit must not be negative")
	}
	return nil
}
