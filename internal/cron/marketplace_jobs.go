package cron

import (
	"context"
	"fmt"
	"time"
)

type groupOrderExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type lowStockAlerter interface {
	EmitLowStockAlerts(ctx context.Context, now time.Time) (int, error)
}

// NewGroupOrderExpiryJob closes group orders whose end time has passed.
func NewGroupOrderExpiryJob(orders groupOrderExpirer) (Job, error) {
	if orders == nil {
		return nil, fmt.Errorf("group order service required")
	}
	return &groupOrderExpiryJob{orders: orders, now: time.Now}, nil
}

type groupOrderExpiryJob struct {
	orders groupOrderExpirer
	now    func() time.Time
}

func (j *groupOrderExpiryJob) Name() string { return "group-order-expiry" }

func (j *groupOrderExpiryJob) Run(ctx context.Context) (int, error) {
	return j.orders.ExpireDue(ctx, j.now().UTC())
}

// NewLowStockAlertJob queues reorder alerts for vendor inventory.
func NewLowStockAlertJob(inventory lowStockAlerter) (Job, error) {
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &lowStockAlertJob{inventory: inventory, now: time.Now}, nil
}

type lowStockAlertJob struct {
	inventory lowStockAlerter
	now       func() time.Time
}

func (j *lowStockAlertJob) Name() string { return "inventory-low-stock" }

func (j *lowStockAlertJob) Run(ctx context.Context) (int, error) {
	return j.inventory.EmitLowStockAlerts(ctx, j.now().UTC())
}
