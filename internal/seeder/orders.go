package seeder

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/fixtures"
)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    order_number VARCHAR(50) NOT NULL UNIQUE,
    customer_id VARCHAR(24) NOT NULL,
    customer_name VARCHAR(200),
    customer_email VARCHAR(255),
    customer_phone VARCHAR(50),
    status VARCHAR(30) NOT NULL DEFAULT 'pending',
    payment_status VARCHAR(30) NOT NULL DEFAULT 'pending',
    payment_method VARCHAR(50),
    subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
    discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
    tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
    shipping_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
    total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
    currency VARCHAR(3) NOT NULL DEFAULT 'USD',
    shipping_street VARCHAR(255),
    shipping_city VARCHAR(100),
    shipping_state VARCHAR(100),
    shipping_zip VARCHAR(20),
    shipping_country VARCHAR(2),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_by VARCHAR(100)
);

CREATE INDEX IF NOT EXISTS ix_orders_customer_id ON orders (customer_id);

CREATE TABLE IF NOT EXISTS order_items (
    id UUID PRIMARY KEY,
    order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id VARCHAR(24) NOT NULL,
    product_name VARCHAR(255) NOT NULL,
    sku VARCHAR(100),
    unit_price NUMERIC(12,2) NOT NULL,
    quantity INT NOT NULL,
    total_price NUMERIC(12,2) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS ix_order_items_order_id ON order_items (order_id);
`

type ordersUnit struct {
	base
}

func NewOrders(d Deps) Unit {
	return &ordersUnit{base: newBase(d, "orders", ordersSchema)}
}

func (u *ordersUnit) Seed(ctx context.Context, opts Options) error {
	raw, err := fixtures.Load(u.deps.Fixtures, fixtures.Orders)
	if err != nil {
		return err
	}
	products, err := fixtures.Load(u.deps.Fixtures, fixtures.Products)
	if err != nil {
		return err
	}

	result := converter.ConvertOrders(raw, converter.Catalog(products), u.deps.Convert)
	lines := 0
	for _, o := range result.Orders {
		lines += len(o.Items)
	}
	// rows, not orders: Inserted counts order_items too
	u.stats.Total = len(raw) + lines
	u.stats.Skipped = len(result.Unresolved)
	for _, pos := range result.Unresolved {
		color.Yellow("  ⚠️  Skipping order #%d: user or products not seeded in this run", pos)
	}
	color.Cyan("  📝 Prepared %d orders", len(result.Orders))
	if opts.DryRun {
		return nil
	}

	db, err := u.sql()
	if err != nil {
		return err
	}
	items := 0
	err = db.Transaction(ctx, func(tx database.Execer) error {
		for _, o := range result.Orders {
			if err := tx.Insert(ctx, "orders", []database.Record{o.Record()}); err != nil {
				return fmt.Errorf("order %s: %w", o.OrderNumber, err)
			}
			if err := tx.Insert(ctx, "order_items", o.ItemRecords()); err != nil {
				return fmt.Errorf("order %s items: %w", o.OrderNumber, err)
			}
			items += len(o.Items)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.stats.Inserted += len(result.Orders) + items
	u.expected = len(result.Orders)
	color.Green("  ✅ Inserted %d orders with %d items", len(result.Orders), items)
	return nil
}
