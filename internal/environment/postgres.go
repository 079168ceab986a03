package environment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mansikatarey/Umbra/internal/types"
)

// PGProvider reads obstruction and canopy data from Postgres. Footprints are
// stored as GeoJSON geometry text alongside bounding-box columns so range
// queries need no spatial extension.
type PGProvider struct {
	pool   *pgxpool.Pool
	extent orb.Bound
}

func NewPGProvider(ctx context.Context, databaseURL string) (*PGProvider, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error opening environment database: %s", err.Error()))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.New(fmt.Sprintf("error verifying environment database connection: %s", err.Error()))
	}

	p := &PGProvider{pool: pool}

	row := pool.QueryRow(ctx, `SELECT min_lon, min_lat, max_lon, max_lat FROM coverage_extent LIMIT 1`)
	var minLon, minLat, maxLon, maxLat float64
	if err := row.Scan(&minLon, &minLat, &maxLon, &maxLat); err != nil {
		pool.Close()
		return nil, errors.New(fmt.Sprintf("error reading coverage extent: %s", err.Error()))
	}
	p.extent = orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}

	return p, nil
}

func (p *PGProvider) Close() {
	p.pool.Close()
}

func (p *PGProvider) Snapshot(ctx context.Context, region orb.Bound) (*types.EnvironmentSnapshot, error) {
	snap := &types.EnvironmentSnapshot{Region: intersect(p.extent, region)}

	rows, err := p.pool.Query(ctx, `
		SELECT height_m, footprint
		FROM buildings
		WHERE max_lon >= $1 AND min_lon <= $2 AND max_lat >= $3 AND min_lat <= $4`,
		region.Min.Lon(), region.Max.Lon(), region.Min.Lat(), region.Max.Lat())
	if err != nil {
		return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var height float64
		var footprint []byte
		if err := rows.Scan(&height, &footprint); err != nil {
			return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
		}
		poly, err := decodePolygon(footprint)
		if err != nil {
			return nil, err
		}
		snap.Buildings = append(snap.Buildings, types.Building{Footprint: poly, HeightM: height})
	}
	if err := rows.Err(); err != nil {
		return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
	}

	canopyRows, err := p.pool.Query(ctx, `
		SELECT coverage, polygon
		FROM canopy
		WHERE max_lon >= $1 AND min_lon <= $2 AND max_lat >= $3 AND min_lat <= $4`,
		region.Min.Lon(), region.Max.Lon(), region.Min.Lat(), region.Max.Lat())
	if err != nil {
		return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
	}
	defer canopyRows.Close()

	for canopyRows.Next() {
		var coverage float64
		var polygon []byte
		if err := canopyRows.Scan(&coverage, &polygon); err != nil {
			return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
		}
		poly, err := decodePolygon(polygon)
		if err != nil {
			return nil, err
		}
		snap.Canopy = append(snap.Canopy, types.CanopyPatch{Polygon: poly, Coverage: coverage})
	}
	if err := canopyRows.Err(); err != nil {
		return nil, types.UpstreamUnavailableError{Upstream: "environment-db", Err: err}
	}

	return snap, nil
}

func decodePolygon(data []byte) (orb.Polygon, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error decoding stored footprint: %s", err.Error()))
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, errors.New("stored footprint is not a polygon")
	}
	return poly, nil
}
