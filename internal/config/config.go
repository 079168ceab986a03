// Package config holds the scoring tunables, loadable from an optional YAML
// file. Collaborator endpoints and credentials stay in environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tunables struct {
	ListenAddr          string  `yaml:"listen_addr"`
	SampleIntervalM     float64 `yaml:"sample_interval_m"`
	CanopyThreshold     float64 `yaml:"canopy_threshold"`
	MaxShadowReachM     float64 `yaml:"max_shadow_reach_m"`
	SnapshotPadM        float64 `yaml:"snapshot_pad_m"`
	SnapshotCacheTTLSec int     `yaml:"snapshot_cache_ttl_s"`
	PlanTimeoutSec      int     `yaml:"plan_timeout_s"`
	MaxDepartHorizonH   int     `yaml:"max_depart_horizon_h"`
}

func Default() Tunables {
	return Tunables{
		ListenAddr:          ":8080",
		SampleIntervalM:     20,
		CanopyThreshold:     0.25,
		MaxShadowReachM:     500,
		SnapshotPadM:        250,
		SnapshotCacheTTLSec: 900,
		PlanTimeoutSec:      30,
		MaxDepartHorizonH:   168,
	}
}

func (t Tunables) SnapshotCacheTTL() time.Duration {
	return time.Duration(t.SnapshotCacheTTLSec) * time.Second
}

func (t Tunables) PlanTimeout() time.Duration {
	return time.Duration(t.PlanTimeoutSec) * time.Second
}

// Load reads tunables from the YAML file at path, applied over defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Tunables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, errors.New(fmt.Sprintf("error reading config file %s: %s", path, err.Error()))
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, errors.New(fmt.Sprintf("error parsing config file %s: %s", path, err.Error()))
	}

	if t.SampleIntervalM <= 0 {
		return t, errors.New("sample_interval_m must be positive")
	}
	if t.CanopyThreshold < 0 || t.CanopyThreshold > 1 {
		return t, errors.New("canopy_threshold must be within [0,1]")
	}
	return t, nil
}
