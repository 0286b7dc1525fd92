package plan_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/plan"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

const catalog = `
plans:
  - id: basic
    name: Básico
    price_id: price_basic
    credits_per_month: 100
  - id: premium
    name: Premium
    price_id: price_premium
    tier: premium
    credits_per_month: 500
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSeedFromFile(t *testing.T) {
	ctx := context.Background()
	repo := plan.NewGormPlanRepository(testutil.NewDB(t))

	n, err := plan.SeedFromFile(ctx, repo, writeCatalog(t, catalog))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Seeding twice refreshes instead of failing.
	_, err = plan.SeedFromFile(ctx, repo, writeCatalog(t, catalog))
	require.NoError(t, err)

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "basic", plans[0].ID)
	assert.Equal(t, domain.TierBasic, plans[0].Tier)

	p, err := repo.FindByID(ctx, "premium")
	require.NoError(t, err)
	assert.Equal(t, "price_premium", p.PriceID)
}

func TestFindByIDMissing(t *testing.T) {
	repo := plan.NewGormPlanRepository(testutil.NewDB(t))
	_, err := repo.FindByID(context.Background(), "gold")
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestLoadCatalogRequiresPriceID(t *testing.T) {
	_, err := plan.LoadCatalog(writeCatalog(t, "plans:\n  - id: x\n    name: X\n"))
	assert.Error(t, err)
}
