package jps

import "github.com/voxelpath/pathd/internal/core/vec"

// Oracle answers the movement questions the search cannot answer itself. An
// error is an oracle fault: the search logs it and treats the answer as false.
type Oracle interface {
	// IsReachable reports whether an agent at from can step into the adjacent cell to.
	IsReachable(from, to vec.Vec3) (bool, error)
	// IsWalkable reports whether an agent can stand at p.
	IsWalkable(p vec.Vec3) (bool, error)
	// InSight reports whether the straight segment a-b is unobstructed.
	InSight(a, b vec.Vec3) (bool, error)
}

// Composite accepts a move or a position when any of its oracles does. It never
// claims line of sight: different movement modes disagree on what blocks a ray.
type Composite []Oracle

func (c Composite) IsReachable(from, to vec.Vec3) (bool, error) {
	var firstErr error
	for _, o := range c {
		ok, err := o.IsReachable(from, to)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, firstErr
}

func (c Composite) IsWalkable(p vec.Vec3) (bool, error) {
	var firstErr error
	for _, o := range c {
		ok, err := o.IsWalkable(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, firstErr
}

func (c Composite) InSight(a, b vec.Vec3) (bool, error) {
	return false, nil
}
