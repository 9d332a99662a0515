package inventory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/dbtest"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/types"
)

type fixture struct {
	svc    Service
	conn   *gorm.DB
	vendor uuid.UUID
	now    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	f := &fixture{conn: conn, vendor: uuid.New(), now: &now}
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Tx:     db.Wrap(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), logger.Nop()),
		Config: config.InventoryConfig{AlertCooldown: 24 * time.Hour},
		Logger: logger.Nop(),
		Now:    func() time.Time { return *f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T, name string, current, minimum, capacity, usage float64) *ItemView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), f.vendor, ItemInput{
		ProductName:  name,
		Category:     "vegetables",
		Unit:         "kg",
		CurrentStock: current,
		MinThreshold: minimum,
		MaxCapacity:  capacity,
		UsageRate:    usage,
		CostPerUnit:  decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	return view
}

func TestServiceCreateDerivesFigures(t *testing.T) {
	f := newFixture(t)

	view := f.create(t, "Onions", 5, 10, 50, 2)
	require.Equal(t, enums.StockStatusLowStock, view.Status)
	require.NotNil(t, view.EstimatedDaysLeft)
	require.InDelta(t, 2.5, *view.EstimatedDaysLeft, 1e-9)
	require.InDelta(t, 10, view.StockPercent, 1e-9)
	require.True(t, view.TotalValue.Equal(decimal.NewFromInt(200)))
	require.True(t, view.NeedsReorder)

	idle := f.create(t, "Salt", 80, 5, 50, 0)
	require.Equal(t, enums.StockStatusOverstocked, idle.Status)
	require.Nil(t, idle.EstimatedDaysLeft)
	require.InDelta(t, 100, idle.StockPercent, 1e-9)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.vendor, ItemInput{ProductName: "Oil", Unit: "l", MaxCapacity: 0})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.vendor, ItemInput{ProductName: "Oil", Unit: "l", MaxCapacity: 10, CurrentStock: -1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.vendor, ItemInput{ProductName: " ", Unit: "l", MaxCapacity: 10})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceScopesItemsToVendor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Tomatoes", 20, 5, 40, 1)

	_, err := f.svc.Get(ctx, uuid.New(), item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = f.svc.Delete(ctx, uuid.New(), item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.Delete(ctx, f.vendor, item.ID))
	_, err = f.svc.Get(ctx, f.vendor, item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceUpdatePatchesSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Paneer", 3, 2, 10, 1)

	supplier := uuid.New()
	stock := 1.0
	view, err := f.svc.Update(ctx, f.vendor, item.ID, UpdateInput{
		CurrentStock: &stock,
		SupplierID:   types.NullableUUID{Valid: true, Value: &supplier},
	})
	require.NoError(t, err)
	require.Equal(t, enums.StockStatusLowStock, view.Status)
	require.NotNil(t, view.SupplierID)
	require.Equal(t, supplier, *view.SupplierID)

	view, err = f.svc.Update(ctx, f.vendor, item.ID, UpdateInput{})
	require.NoError(t, err)
	require.NotNil(t, view.SupplierID)

	view, err = f.svc.Update(ctx, f.vendor, item.ID, UpdateInput{SupplierID: types.NullableUUID{Valid: true}})
	require.NoError(t, err)
	require.Nil(t, view.SupplierID)

	capacity := 0.5
	_, err = f.svc.Update(ctx, f.vendor, item.ID, UpdateInput{MaxCapacity: &capacity})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceSummaryAndAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Potatoes", 30, 10, 50, 2)
	slow := f.create(t, "Lentils", 8, 10, 50, 1)
	empty := f.create(t, "Ghee", 0, 2, 10, 1)
	fast := f.create(t, "Chillies", 4, 10, 50, 2)

	summary, err := f.svc.Summary(ctx, f.vendor)
	require.NoError(t, err)
	require.Equal(t, 4, summary.TotalItems)
	require.Equal(t, 3, summary.CriticalCount)
	require.Equal(t, 2, summary.LowStock)
	require.Equal(t, 1, summary.OutOfStock)
	require.True(t, summary.TotalValue.Equal(decimal.NewFromInt(1680)))

	alerts, err := f.svc.Alerts(ctx, f.vendor)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	require.Equal(t, empty.ID, alerts[0].Item.ID)
	require.Equal(t, enums.AlertSeverityCritical, alerts[0].Severity)
	require.Equal(t, fast.ID, alerts[1].Item.ID)
	require.Equal(t, slow.ID, alerts[2].Item.ID)
	require.Equal(t, enums.AlertSeverityHigh, alerts[2].Severity)
}

func TestServiceRestock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Flour", 2, 5, 25, 1)

	_, err := f.svc.Restock(ctx, f.vendor, item.ID, 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	view, err := f.svc.Restock(ctx, f.vendor, item.ID, 10)
	require.NoError(t, err)
	require.InDelta(t, 12, view.CurrentStock, 1e-9)
	require.Equal(t, enums.StockStatusInStock, view.Status)
	require.NotNil(t, view.LastRestocked)
	require.True(t, view.LastRestocked.Equal(*f.now))
}

func TestServiceEmitLowStockAlertsRespectsCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.create(t, "Coriander", 1, 3, 10, 0)
	f.create(t, "Rice", 20, 5, 40, 2)

	count, err := f.svc.EmitLowStockAlerts(ctx, *f.now)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var rows []models.OutboxEvent
	require.NoError(t, f.conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventInventoryLowStock, rows[0].EventType)
	require.Equal(t, low.ID, rows[0].AggregateID)

	envelope, err := outbox.DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	var payload payloads.InventoryLowStockEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	require.Equal(t, f.vendor, payload.VendorID)
	require.Equal(t, enums.AlertSeverityHigh, payload.Severity)
	require.Nil(t, payload.DaysLeft)

	later := f.now.Add(time.Hour)
	count, err = f.svc.EmitLowStockAlerts(ctx, later)
	require.NoError(t, err)
	require.Zero(t, count)

	nextDay := f.now.Add(25 * time.Hour)
	count, err = f.svc.EmitLowStockAlerts(ctx, nextDay)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
