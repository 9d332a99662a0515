package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
)

// LineView is a cart line with its extended total.
type LineView struct {
	Line
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the cart as returned to clients.
type View struct {
	Lines     []LineView      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// SupplierGroup collects the lines bought from one supplier.
type SupplierGroup struct {
	SupplierID uuid.UUID
	Lines      []Line
	Subtotal   decimal.Decimal
}

func newView(c Cart) (*View, error) {
	view := &View{Lines: make([]LineView, 0, c.Len())}
	for _, line := range c.Lines {
		lineTotal, err := pricing.LineTotal(line.UnitPrice, line.Quantity)
		if err != nil {
			return nil, err
		}
		view.Lines = append(view.Lines, LineView{Line: line, LineTotal: lineTotal})
	}
	total, err := Total(c)
	if err != nil {
		return nil, err
	}
	view.Total = total
	view.ItemCount = ItemCount(c)
	return view, nil
}

// GroupBySupplier splits the cart into per-supplier groups, ordered by the
// first line of each supplier.
func GroupBySupplier(c Cart) ([]SupplierGroup, error) {
	index := map[uuid.UUID]int{}
	var groups []SupplierGroup
	for _, line := range c.Lines {
		lineTotal, err := pricing.LineTotal(line.UnitPrice, line.Quantity)
		if err != nil {
			return nil, err
		}
		idx, ok := index[line.SupplierID]
		if !ok {
			idx = len(groups)
			index[line.SupplierID] = idx
			groups = append(groups, SupplierGroup{SupplierID: line.SupplierID, Subtotal: decimal.Zero})
		}
		groups[idx].Lines = append(groups[idx].Lines, line)
		groups[idx].Subtotal = groups[idx].Subtotal.Add(lineTotal)
	}
	return groups, nil
}
