package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/ledger/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&RecordModel{}), "failed to migrate table")
	return db
}

func seed(t *testing.T, repo *recordGorm, recs ...entity.LedgerRecord) {
	t.Helper()
	for _, r := range recs {
		require.NoError(t, repo.Upsert(context.Background(), r))
	}
}

func rec(pid, aid uint, day string, change float64) entity.LedgerRecord {
	return entity.LedgerRecord{PortfolioID: pid, AssetID: aid, Date: caldate.MustParse(day), Change: change}
}

func TestRecordGorm_ListByPortfolio(t *testing.T) {
	t.Parallel()

	repo := NewRecordRepository(setupTestDB(t))
	seed(t, repo,
		rec(1, 2, "2024-01-03", 1),
		rec(1, 1, "2024-01-03", 2),
		rec(1, 1, "2024-01-01", 3),
		rec(1, 1, "2024-01-05", 4),
		rec(2, 1, "2024-01-03", 5),
	)
	ctx := context.Background()
	d := caldate.MustParse("2024-01-03")

	tests := []struct {
		name    string
		mode    entity.BoundaryMode
		changes []float64
	}{
		{name: "exact", mode: entity.Exact, changes: []float64{2, 1}},
		{name: "as of or before", mode: entity.AsOfOrBefore, changes: []float64{3, 2, 1}},
		{name: "on or after", mode: entity.OnOrAfter, changes: []float64{2, 1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListByPortfolio(ctx, 1, d, tt.mode)
			require.NoError(t, err)
			var changes []float64
			for _, r := range got {
				assert.Equal(t, uint(1), r.PortfolioID)
				changes = append(changes, r.Change)
			}
			assert.Equal(t, tt.changes, changes)
		})
	}

	_, err := repo.ListByPortfolio(ctx, 1, d, entity.BoundaryMode(42))
	assert.Error(t, err)
}

func TestRecordGorm_ListRangeHalfOpen(t *testing.T) {
	t.Parallel()

	repo := NewRecordRepository(setupTestDB(t))
	seed(t, repo,
		rec(1, 1, "2024-01-01", 1),
		rec(1, 1, "2024-01-02", 1),
		rec(1, 1, "2024-01-03", 1),
		rec(1, 2, "2024-01-02", 1),
	)

	got, err := repo.ListRange(context.Background(), 1, 1, caldate.MustParse("2024-01-01"), caldate.MustParse("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date.String())
	assert.Equal(t, "2024-01-02", got[1].Date.String())
}

func TestRecordGorm_UpsertOverwritesSameDay(t *testing.T) {
	t.Parallel()

	repo := NewRecordRepository(setupTestDB(t))
	ctx := context.Background()
	day := caldate.MustParse("2024-02-01")

	seed(t, repo, rec(1, 1, "2024-02-01", 5))
	updated := rec(1, 1, "2024-02-01", 5)
	updated.Result = 5
	updated.Price = 1300.5
	updated.Unit = "KRW"
	seed(t, repo, updated)

	got, ok, err := repo.Find(ctx, 1, 1, day)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, got.Result)
	assert.Equal(t, 1300.5, got.Price)
	assert.Equal(t, "KRW", got.Unit)
	assert.True(t, got.Priced())

	all, err := repo.ListByPortfolio(ctx, 1, day, entity.Exact)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, ok, err = repo.Find(ctx, 1, 1, day.AddDays(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordGorm_CountByAsset(t *testing.T) {
	t.Parallel()

	repo := NewRecordRepository(setupTestDB(t))
	seed(t, repo,
		rec(1, 1, "2024-01-01", 1),
		rec(2, 1, "2024-01-01", 1),
		rec(1, 2, "2024-01-01", 1),
	)

	n, err := repo.CountByAsset(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountByAsset(context.Background(), 9)
	require.NoError(t, err)
	assert.Zero(t, n)
}
