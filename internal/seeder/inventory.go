package seeder

import (
	"context"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/fixtures"
)

// inventorySchema mirrors the inventory service's initial migration, so the
// service does not have to run before it is seeded.
const inventorySchema = `
CREATE TABLE IF NOT EXISTS inventory_items (
    id INT AUTO_INCREMENT PRIMARY KEY,
    sku VARCHAR(100) NOT NULL,
    quantity_available INT NOT NULL DEFAULT 0,
    quantity_reserved INT NOT NULL DEFAULT 0,
    reorder_level INT NOT NULL DEFAULT 10,
    max_stock INT NOT NULL DEFAULT 1000,
    cost_per_unit DECIMAL(10,2) DEFAULT 0.00,
    last_restocked DATETIME NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE INDEX ix_inventory_items_sku (sku)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS reservations (
    id VARCHAR(36) PRIMARY KEY,
    order_id VARCHAR(36) NOT NULL,
    sku VARCHAR(100) NOT NULL,
    quantity INT NOT NULL,
    status ENUM('PENDING','ACTIVE','CONFIRMED','RELEASED','EXPIRED','CANCELLED') NOT NULL DEFAULT 'PENDING',
    expires_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX ix_reservations_order_id (order_id),
    INDEX ix_reservations_sku (sku),
    INDEX ix_reservations_status (status),
    INDEX ix_reservations_expires_at (expires_at),
    CONSTRAINT fk_reservations_sku FOREIGN KEY (sku) REFERENCES inventory_items(sku) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS stock_movements (
    id INT AUTO_INCREMENT PRIMARY KEY,
    sku VARCHAR(100) NOT NULL,
    movement_type ENUM('IN','OUT','RESERVED','RELEASED','ADJUSTMENT') NOT NULL,
    quantity INT NOT NULL,
    reference VARCHAR(255) NULL,
    reason TEXT NULL,
    created_by VARCHAR(100) NOT NULL DEFAULT 'system',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX ix_stock_movements_sku (sku),
    INDEX ix_stock_movements_type (movement_type),
    INDEX ix_stock_movements_reference (reference),
    INDEX ix_stock_movements_created_at (created_at),
    CONSTRAINT fk_stock_movements_sku FOREIGN KEY (sku) REFERENCES inventory_items(sku) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS alembic_version (
    version_num VARCHAR(32) NOT NULL,
    CONSTRAINT alembic_version_pkc PRIMARY KEY (version_num)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

INSERT IGNORE INTO alembic_version (version_num) VALUES ('001_initial');
`

type inventoryUnit struct {
	base
}

func NewInventory(d Deps) Unit {
	return &inventoryUnit{base: newBase(d, "inventory_items", inventorySchema)}
}

func (u *inventoryUnit) Seed(ctx context.Context, opts Options) error {
	raw, err := fixtures.Load(u.deps.Fixtures, fixtures.Inventory)
	if err != nil {
		return err
	}
	products, err := fixtures.Load(u.deps.Fixtures, fixtures.Products)
	if err != nil {
		return err
	}

	db, err := u.sql()
	if err != nil {
		return err
	}

	var exists func(string) bool
	if !opts.Clear && !opts.DryRun {
		skus, err := db.Column(ctx, "SELECT sku FROM inventory_items")
		if err != nil {
			return err
		}
		present := make(map[string]bool, len(skus))
		for _, sku := range skus {
			present[sku] = true
		}
		exists = func(sku string) bool { return present[sku] }
	}

	result := converter.ConvertInventory(raw, products, exists, u.deps.Convert)
	u.stats.Total = len(result.Items) + len(result.Skipped)
	u.stats.Skipped = len(result.Skipped)
	color.Cyan("  📝 Prepared %d inventory rows from %d base SKUs", len(result.Items), len(raw))
	if len(result.Skipped) > 0 {
		color.Yellow("  ⏭️  Skipping %d SKUs that already exist", len(result.Skipped))
	}
	if opts.DryRun {
		return nil
	}

	records := make([]database.Record, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, item.Record())
	}
	if err := db.Transaction(ctx, func(tx database.Execer) error {
		return tx.Insert(ctx, "inventory_items", records)
	}); err != nil {
		return err
	}

	u.stats.Inserted += len(records)
	u.expected = len(records)
	color.Green("  ✅ Inserted %d inventory rows", len(records))
	return nil
}
