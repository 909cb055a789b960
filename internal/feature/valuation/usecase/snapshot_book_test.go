package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portfoliodomain "portfolio_backend/internal/feature/portfolios/domain"
	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/caldate"
)

// memSnapshots is an in-memory SnapshotStore keyed by (portfolio, day).
type memSnapshots struct {
	rows      map[string]entity.Snapshot
	UpsertErr error
	Lists     int
}

func newMemSnapshots() *memSnapshots { return &memSnapshots{rows: map[string]entity.Snapshot{}} }

func (m *memSnapshots) Upsert(ctx context.Context, snap entity.Snapshot) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.rows[priceKey(snap.PortfolioID, snap.Date)] = snap
	return nil
}

func (m *memSnapshots) List(ctx context.Context, portfolioID uint, start, end caldate.Date) ([]entity.Snapshot, error) {
	m.Lists++
	var out []entity.Snapshot
	for _, s := range m.rows {
		if s.PortfolioID != portfolioID {
			continue
		}
		if (!start.IsZero() && s.Date.Before(start)) || (!end.IsZero() && !s.Date.Before(end)) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func newTestBook(f *fixture, store *memSnapshots) *SnapshotBook {
	ps := stubPortfolios{list: []portfolioentity.Portfolio{pf}}
	b := NewSnapshotBook(NewValuator(ps, testAssets, f.records, f.cache, nopLog), store, ps)
	b.now = func() time.Time { return time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC) }
	return b
}

func TestSnapshotBook_Take(t *testing.T) {
	t.Parallel()

	f := newFixture(rec(1, 2, "2024-01-02", 10))
	ctx := context.Background()
	require.NoError(t, f.cache.Put(ctx, 2, d("2024-01-05"), 150, "KRW"))
	store := newMemSnapshots()

	snap, err := newTestBook(f, store).Take(ctx, 1, d("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 1500.0, snap.Total)
	assert.Equal(t, "KRW", snap.TotalUnit)
	assert.Equal(t, time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC), snap.TakenAt)

	stored, ok := store.rows[priceKey(1, d("2024-01-05"))]
	require.True(t, ok)
	assert.Equal(t, snap, stored)
}

func TestSnapshotBook_Take_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown portfolio stores nothing", func(t *testing.T) {
		store := newMemSnapshots()
		_, err := newTestBook(newFixture(), store).Take(ctx, 9, d("2024-01-05"))
		assert.ErrorIs(t, err, portfoliodomain.ErrPortfolioNotFound)
		assert.Empty(t, store.rows)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemSnapshots()
		store.UpsertErr = db.ErrStoreUnavailable
		_, err := newTestBook(newFixture(), store).Take(ctx, 1, d("2024-01-05"))
		assert.ErrorIs(t, err, db.ErrStoreUnavailable)
	})
}

func TestSnapshotBook_History(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemSnapshots()
	for _, day := range []string{"2024-01-02", "2024-01-03", "2024-01-04"} {
		require.NoError(t, store.Upsert(ctx, entity.Snapshot{PortfolioID: 1, Date: d(day)}))
	}
	b := newTestBook(newFixture(), store)

	got, err := b.History(ctx, 1, d("2024-01-03"), caldate.Date{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = b.History(ctx, 1, d("2024-01-04"), d("2024-01-04"))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = b.History(ctx, 9, caldate.Date{}, caldate.Date{})
	assert.ErrorIs(t, err, portfoliodomain.ErrPortfolioNotFound)
	assert.Equal(t, 1, store.Lists, "rejected requests never reach the store")
}
