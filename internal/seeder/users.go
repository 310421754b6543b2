package seeder

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database/mongodb"
	"github.com/xshopai/seeder/internal/fixtures"
)

type usersUnit struct {
	base
}

func NewUsers(d Deps) Unit {
	return &usersUnit{base: newBase(d, "users", "")}
}

func (u *usersUnit) Seed(ctx context.Context, opts Options) error {
	raw, err := fixtures.Load(u.deps.Fixtures, fixtures.Users)
	if err != nil {
		return err
	}

	users := converter.ConvertUsers(raw, u.deps.Convert)
	u.stats.Total = len(users)
	color.Cyan("  📝 Prepared %d users", len(users))
	if opts.DryRun {
		return nil
	}

	docs, err := mongodb.Documents(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if _, err := u.documents(); err != nil {
		return err
	}
	if err := u.insertDocuments(ctx, "users", docs, opts); err != nil {
		return err
	}
	u.expected = len(docs)
	color.Green("  ✅ Inserted %d users", len(docs))
	return nil
}
