package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

const bulletinColumns = `zone, date, city_max_aqi, main_pollutant, stations, published_at, updated_at`

type pgBulletinRepository struct {
	pool *pgxpool.Pool
}

// NewPgBulletinRepository returns a BulletinRepository backed by PostgreSQL.
func NewPgBulletinRepository(pool *pgxpool.Pool) BulletinRepository {
	return &pgBulletinRepository{pool: pool}
}

func (r *pgBulletinRepository) Upsert(ctx context.Context, s *domain.DailySummary) (bool, error) {
	stations, err := json.Marshal(s.Stations)
	if err != nil {
		return false, fmt.Errorf("marshal stations: %w", err)
	}

	// xmax is zero only for a freshly inserted row.
	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO bulletins
			(zone, date, city_max_aqi, main_pollutant, stations, published_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (zone, date) DO UPDATE SET
			city_max_aqi   = EXCLUDED.city_max_aqi,
			main_pollutant = EXCLUDED.main_pollutant,
			stations       = EXCLUDED.stations,
			published_at   = EXCLUDED.published_at,
			updated_at     = NOW()
		RETURNING (xmax = 0)`,
		s.Zone, s.Date, s.CityMaxAQI, s.MainPollutant, stations, s.PublishedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert bulletin: %w", err)
	}
	return inserted, nil
}

func (r *pgBulletinRepository) GetByDate(ctx context.Context, zone, date string) (*domain.DailySummary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bulletinColumns+`
		FROM bulletins WHERE zone = $1 AND date = $2`, zone, date)

	s, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func (r *pgBulletinRepository) Latest(ctx context.Context, zone string) (*domain.DailySummary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bulletinColumns+`
		FROM bulletins WHERE zone = $1
		ORDER BY published_at DESC
		LIMIT 1`, zone)

	s, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func (r *pgBulletinRepository) LatestPerZone(ctx context.Context) ([]*domain.DailySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (zone) `+bulletinColumns+`
		FROM bulletins
		ORDER BY zone, published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest per zone: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (r *pgBulletinRepository) List(ctx context.Context, f domain.BulletinFilter) ([]*domain.DailySummary, int, error) {
	var (
		where string
		args  []any
	)
	if f.Zone != nil {
		where = " WHERE zone = $1"
		args = append(args, *f.Zone)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bulletins"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bulletins: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM bulletins%s
		ORDER BY published_at DESC
		LIMIT $%d OFFSET $%d`, bulletinColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bulletins: %w", err)
	}
	defer rows.Close()

	summaries, err := scanSummaries(rows)
	return summaries, total, err
}

// ---- helpers ----

func scanSummary(row pgx.Row) (*domain.DailySummary, error) {
	var (
		s        domain.DailySummary
		stations []byte
	)
	err := row.Scan(
		&s.Zone, &s.Date, &s.CityMaxAQI, &s.MainPollutant,
		&stations, &s.PublishedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stations, &s.Stations); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	return &s, nil
}

func scanSummaries(rows pgx.Rows) ([]*domain.DailySummary, error) {
	var result []*domain.DailySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
