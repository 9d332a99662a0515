package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSavingsPerUnit(t *testing.T) {
	cases := []struct {
		name    string
		regular string
		group   string
		want    string
		wantErr error
	}{
		{name: "discount", regular: "120", group: "95", want: "25"},
		{name: "no discount", regular: "40.50", group: "40.50", want: "0"},
		{name: "group above regular", regular: "10", group: "11", wantErr: ErrInvalidPrice},
		{name: "negative regular", regular: "-1", group: "0", wantErr: ErrInvalidPrice},
		{name: "negative group", regular: "5", group: "-0.01", wantErr: ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SavingsPerUnit(decimal.RequireFromString(tc.regular), decimal.RequireFromString(tc.group))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	got, err := LineTotal(decimal.RequireFromString("45"), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(225)) {
		t.Fatalf("expected 225, got %s", got)
	}

	zero, err := LineTotal(decimal.RequireFromString("12.75"), 0)
	if err != nil || !zero.IsZero() {
		t.Fatalf("expected zero total, got %s (%v)", zero, err)
	}

	if _, err := LineTotal(decimal.NewFromInt(1), -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := LineTotal(decimal.NewFromInt(-1), 1); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestItemValidate(t *testing.T) {
	if err := (Item{UnitPrice: decimal.NewFromInt(30), Unit: "kg"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Item{UnitPrice: decimal.NewFromInt(-3), Unit: "kg"}).Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
	if err := (Item{UnitPrice: decimal.NewFromInt(3), Unit: " "}).Validate(); err == nil {
		t.Fatal("expected missing unit error")
	}
}
