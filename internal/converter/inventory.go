package converter

import (
	"time"

	"github.com/xshopai/seeder/internal/fixtures"
)

type InventoryItem struct {
	SKU               string
	BaseSKU           string
	QuantityAvailable int
	QuantityReserved  int
	ReorderLevel      int
	MaxStock          int
	CostPerUnit       float64
	LastRestocked     time.Time
}

func (i InventoryItem) Record() map[string]interface{} {
	return map[string]interface{}{
		"sku":                i.SKU,
		"quantity_available": i.QuantityAvailable,
		"quantity_reserved":  i.QuantityReserved,
		"reorder_level":      i.ReorderLevel,
		"max_stock":          i.MaxStock,
		"cost_per_unit":      round(i.CostPerUnit, 2),
		"last_restocked":     i.LastRestocked,
		"created_at":         i.LastRestocked,
		"updated_at":         i.LastRestocked,
	}
}

// InventoryResult separates rows to insert from rows whose SKU already exists.
type InventoryResult struct {
	Items   []InventoryItem
	Skipped []InventoryItem
}

// ConvertInventory expands each base inventory entry into one row per
// color/size variant of the matching product. quantity_available is split
// exactly, with the remainder going one unit each to the first variants.
// reorder_level and max_stock are divided per variant with floors of 1 and
// 10, so their totals are not conserved.
func ConvertInventory(raw, products []fixtures.Record, exists func(sku string) bool, ctx *Context) InventoryResult {
	type shape struct{ colors, sizes []string }
	shapes := make(map[string]shape, len(products))
	for _, p := range products {
		colors, sizes := p.Strings("colors"), p.Strings("sizes")
		if p.String("sku") != "" && len(colors) > 0 && len(sizes) > 0 {
			shapes[p.String("sku")] = shape{colors, sizes}
		}
	}
	if exists == nil {
		exists = func(string) bool { return false }
	}

	var result InventoryResult
	add := func(item InventoryItem) {
		if exists(item.SKU) {
			result.Skipped = append(result.Skipped, item)
			return
		}
		result.Items = append(result.Items, item)
	}

	for _, r := range raw {
		base := r.String("sku")
		restocked := ctx.RecentTime(30)
		quantity := r.Int("quantity_available")
		reorder := r.IntOr("reorder_level", 10)
		maxStock := r.IntOr("max_stock", 1000)
		cost := r.Float("cost_per_unit")

		sh, ok := shapes[base]
		if !ok {
			add(InventoryItem{
				SKU:               base,
				BaseSKU:           base,
				QuantityAvailable: quantity,
				QuantityReserved:  r.Int("quantity_reserved"),
				ReorderLevel:      reorder,
				MaxStock:          maxStock,
				CostPerUnit:       cost,
				LastRestocked:     restocked,
			})
			continue
		}

		variants := Variants(base, sh.colors, sh.sizes)
		n := len(variants)
		for idx, v := range variants {
			add(InventoryItem{
				SKU:               v.SKU,
				BaseSKU:           base,
				QuantityAvailable: SplitQuantity(quantity, n, idx),
				ReorderLevel:      max(1, reorder/n),
				MaxStock:          max(10, maxStock/n),
				CostPerUnit:       cost,
				LastRestocked:     restocked,
			})
		}
	}
	return result
}

// SplitQuantity returns the share of total for the idx-th of n variants.
func SplitQuantity(total, n, idx int) int {
	if n <= 0 {
		return 0
	}
	share := total / n
	if idx < total%n {
		share++
	}
	return share
}
