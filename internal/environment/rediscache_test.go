package environment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/mansikatarey/Umbra/internal/types"
)

type countingProvider struct {
	calls int
	snap  *types.EnvironmentSnapshot
}

func (p *countingProvider) Snapshot(_ context.Context, region orb.Bound) (*types.EnvironmentSnapshot, error) {
	p.calls++
	return p.snap, nil
}

func TestCacheHitsRedisOnRepeat(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingProvider{snap: &types.EnvironmentSnapshot{
		Region: orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}},
		Buildings: []types.Building{{
			HeightM: 12,
			Footprint: orb.Polygon{orb.Ring{
				{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001}, {0, 0},
			}},
		}},
	}}

	cache := NewCache(inner, rc, time.Minute, zap.NewNop().Sugar())
	region := orb.Bound{Min: orb.Point{-0.5, -0.5}, Max: orb.Point{0.5, 0.5}}

	first, err := cache.Snapshot(context.Background(), region)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Snapshot(context.Background(), region)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("inner provider called %d times, want 1", inner.calls)
	}
	if len(second.Buildings) != len(first.Buildings) {
		t.Fatalf("cached snapshot lost buildings: %d vs %d", len(second.Buildings), len(first.Buildings))
	}
	if second.Buildings[0].HeightM != 12 {
		t.Fatalf("cached building height = %v, want 12", second.Buildings[0].HeightM)
	}
	if !second.Region.Contains(orb.Point{0, 0}) {
		t.Fatalf("cached region %v lost its extent", second.Region)
	}
}

func TestCacheMissOnDifferentRegion(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingProvider{snap: &types.EnvironmentSnapshot{}}
	cache := NewCache(inner, rc, time.Minute, zap.NewNop().Sugar())

	regionA := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	regionB := orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{3, 3}}

	if _, err := cache.Snapshot(context.Background(), regionA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Snapshot(context.Background(), regionB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner provider called %d times, want 2", inner.calls)
	}
}
