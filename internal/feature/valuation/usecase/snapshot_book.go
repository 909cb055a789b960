package usecase

import (
	"context"
	"time"

	"portfolio_backend/internal/feature/valuation/domain"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// SnapshotValuer computes a portfolio's valuation as of one day.
type SnapshotValuer interface {
	Valuate(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error)
}

// SnapshotBook keeps the dated valuation history of each portfolio.
type SnapshotBook struct {
	valuer     SnapshotValuer
	store      SnapshotStore
	portfolios PortfolioStore

	now func() time.Time
}

func NewSnapshotBook(valuer SnapshotValuer, store SnapshotStore, portfolios PortfolioStore) *SnapshotBook {
	return &SnapshotBook{valuer: valuer, store: store, portfolios: portfolios, now: time.Now}
}

// Take values the portfolio as of date and stores the result, replacing any
// earlier snapshot of the same day.
func (b *SnapshotBook) Take(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error) {
	snap, err := b.valuer.Valuate(ctx, portfolioID, date)
	if err != nil {
		return entity.Snapshot{}, err
	}
	snap.TakenAt = b.now().UTC()
	if err := b.store.Upsert(ctx, snap); err != nil {
		return entity.Snapshot{}, err
	}
	return snap, nil
}

// History lists stored snapshots in [start, end). Either bound may be zero.
func (b *SnapshotBook) History(ctx context.Context, portfolioID uint, start, end caldate.Date) ([]entity.Snapshot, error) {
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return nil, domain.ErrInvalidRange
	}
	if _, err := b.portfolios.Get(ctx, portfolioID); err != nil {
		return nil, err
	}
	return b.store.List(ctx, portfolioID, start, end)
}
