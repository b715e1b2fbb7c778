package dgp

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"causalpanel/domain/panel"
	"causalpanel/domain/params"
	"causalpanel/domain/run"
)

// Generator runs the full data-generating process for one parameter set.
// A Generator is immutable after New and safe for concurrent use; every
// Generate call replays the same process from the seed.
type Generator struct {
	params  params.ParameterSet
	streams *Streams

	// Sequential forces the single-goroutine path. Both paths emit
	// bit-identical tables; the parallel one just shards users.
	Sequential bool
}

// New validates the parameter set and builds the sub-stream registry.
// Validation happens here, before any sampling: a bad configuration never
// partially generates data.
func New(p params.ParameterSet) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	streams, err := NewStreams(p.Seed,
		RoleTraits, RoleConfNoise, RoleEditNoise, RoleVolume, RoleRetention)
	if err != nil {
		return nil, err
	}
	return &Generator{params: p, streams: streams}, nil
}

// Generate is the convenience path: validate, build, run.
func Generate(p params.ParameterSet) (*panel.Tables, error) {
	g, err := New(p)
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

// Generate runs the process end to end: traits, weekly outcomes, exposure
// summaries, retention draws, assembled and validated tables.
func (g *Generator) Generate() (*panel.Tables, error) {
	p := g.params

	users, err := g.sampleTraits()
	if err != nil {
		return nil, err
	}

	userWeeks := make([]panel.UserWeek, p.Users*p.Weeks)
	if g.Sequential {
		err = g.generateUserRange(users, userWeeks, 0, p.Users)
	} else {
		err = g.generateUsersParallel(users, userWeeks)
	}
	if err != nil {
		return nil, err
	}

	tables := &panel.Tables{
		Users:       users,
		UserWeeks:   userWeeks,
		HasVolume:   p.VolumeEnabled,
		GroundTruth: run.NewGroundTruth(p),
		Manifest:    run.NewManifest(p),
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// generateUserRange runs the per-user pipeline for users[lo:hi], writing
// into disjoint slices of the preallocated tables. Weeks advance strictly
// in order within each user; users within the range are independent.
func (g *Generator) generateUserRange(users []panel.User, userWeeks []panel.UserWeek, lo, hi int) error {
	weeks := g.params.Weeks
	for i := lo; i < hi; i++ {
		u := &users[i]
		rows := userWeeks[i*weeks : (i+1)*weeks]
		if err := g.generateWeeks(u, rows); err != nil {
			return err
		}
		exposure, err := g.aggregateExposure(u, rows)
		if err != nil {
			return err
		}
		if err := g.drawRetention(u, exposure); err != nil {
			return err
		}
	}
	return nil
}

// generateUsersParallel shards users across workers. Safe for any feedback
// weight: sub-streams key on user index, so each user's randomness is
// independent of scheduling, and each worker owns disjoint output ranges.
func (g *Generator) generateUsersParallel(users []panel.User, userWeeks []panel.UserWeek) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(users) {
		workers = len(users)
	}
	if workers < 1 {
		workers = 1
	}

	var eg errgroup.Group
	chunk := (len(users) + workers - 1) / workers
	for lo := 0; lo < len(users); lo += chunk {
		hi := lo + chunk
		if hi > len(users) {
			hi = len(users)
		}
		eg.Go(func() error {
			return g.generateUserRange(users, userWeeks, lo, hi)
		})
	}
	return eg.Wait()
}
