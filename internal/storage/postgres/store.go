package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradeGuard/internal/model"
)

// ErrSnapshotNotFound is returned when a pool has no stored snapshot.
var ErrSnapshotNotFound = errors.New("liquidity snapshot not found")

// Store reads pool liquidity snapshots from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LatestSnapshot returns the most recent snapshot for a pool.
func (s *Store) LatestSnapshot(ctx context.Context, chainID uint64, poolAddress string) (model.LiquiditySnapshot, error) {
	if poolAddress == "" {
		return model.LiquiditySnapshot{}, fmt.Errorf("pool address required")
	}

	snap := model.LiquiditySnapshot{ChainID: chainID}
	var concentration int64
	row := s.pool.QueryRow(ctx, `
		SELECT pool_address, reserve0::text, reserve1::text, total_value_usd::text,
			concentration_score, utilization_rate::text, snapshot_ts
		FROM pool_liquidity_snapshots
		WHERE chain_id = $1 AND lower(pool_address) = lower($2)
		ORDER BY snapshot_ts DESC
		LIMIT 1
	`, int64(chainID), poolAddress)
	if err := row.Scan(
		&snap.PoolAddress,
		&snap.Reserve0,
		&snap.Reserve1,
		&snap.TotalValueUSD,
		&concentration,
		&snap.UtilizationRate,
		&snap.SnapshotAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LiquiditySnapshot{}, fmt.Errorf("%w: chain %d pool %s", ErrSnapshotNotFound, chainID, poolAddress)
		}
		return model.LiquiditySnapshot{}, err
	}
	if concentration < 0 {
		return model.LiquiditySnapshot{}, fmt.Errorf("negative concentration_score %d for pool %s", concentration, poolAddress)
	}
	snap.ConcentrationScore = uint64(concentration)
	return snap, nil
}
