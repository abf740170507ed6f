package jps

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/voxelpath/pathd/internal/core/vec"
)

const costEpsilon = 0.001

// Result is the outcome of a search. Path is empty unless Found.
type Result struct {
	Path  []vec.Vec3
	Cost  float64
	Found bool
	Stats Stats
}

// Searcher runs jump point searches. A Searcher is not safe for concurrent use;
// give each goroutine its own.
type Searcher struct {
	log *zap.Logger

	cfg    Config
	graph  *Graph
	cache  *ReachabilityCache
	open   openList
	forced map[reachKey][]vec.Vec3

	start *JumpPoint
	goal  *JumpPoint
	done  <-chan struct{}

	cancelled  bool
	faults     int
	expansions int
	maxDepth   int
}

func NewSearcher(log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		log:    log,
		graph:  NewGraph(),
		forced: make(map[reachKey][]vec.Vec3),
	}
}

// Search looks for a path from cfg.Start to cfg.Goal. A missing path is not an
// error: Found is false and err is nil. err wraps ErrCancelled when ctx ends
// first; no partial path is returned in that case.
func (s *Searcher) Search(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Oracle == nil {
		return Result{}, ErrNoOracle
	}
	s.reset(ctx, cfg)

	res, err := s.search(ctx)
	res.Stats = s.stats(res)
	return res, err
}

func (s *Searcher) reset(ctx context.Context, cfg Config) {
	s.cfg = cfg
	s.graph.Reset()
	clear(s.forced)
	s.cache = NewReachabilityCache(cfg.Oracle, cfg.CacheSize, s.log)
	s.open.reset(cfg.Ordering)
	s.done = ctx.Done()
	s.cancelled = false
	s.faults = 0
	s.expansions = 0
	s.maxDepth = 0

	s.start = s.graph.Get(cfg.Start)
	s.start.root = true
	s.goal = s.graph.Get(cfg.Goal)
}

func (s *Searcher) search(ctx context.Context) (Result, error) {
	cfg := s.cfg
	if !s.walkable(cfg.Goal) {
		return Result{}, nil
	}
	if cfg.Start == cfg.Goal {
		return Result{Path: []vec.Vec3{cfg.Start, cfg.Goal}, Found: true}, nil
	}
	if cfg.GoalDistance > 0 && s.withinGoal(cfg.Start) {
		return Result{Path: []vec.Vec3{cfg.Start}, Found: true}, nil
	}
	if cfg.UseLineOfSight && s.inSight(cfg.Start, cfg.Goal) {
		return Result{
			Path:  []vec.Vec3{cfg.Start, cfg.Goal},
			Cost:  cfg.Start.Dist(cfg.Goal),
			Found: true,
		}, nil
	}

	s.open.push(s.start)
	for s.open.len() > 0 {
		if s.stopped() {
			break
		}
		cur := s.open.pop()
		s.expansions++
		for _, jp := range s.identifySuccessors(cur) {
			s.open.push(jp)
		}
		if s.goal.Parent != nil || s.cancelled {
			break
		}
	}
	if s.cancelled {
		return Result{}, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}
	if s.goal.Parent == nil {
		return Result{}, nil
	}
	return Result{Path: s.goal.path(), Cost: s.goal.Cost, Found: true}, nil
}

func (s *Searcher) stopped() bool {
	if s.cancelled {
		return true
	}
	select {
	case <-s.done:
		s.cancelled = true
	default:
	}
	return s.cancelled
}

func (s *Searcher) withinGoal(p vec.Vec3) bool {
	r := s.cfg.GoalDistance
	return float64(p.DistSq(s.cfg.Goal)) <= r*r
}

// identifySuccessors jumps from cur along each expanded direction and returns
// the jump points whose cost improved. Arriving within the goal radius ends
// the expansion with that single node.
func (s *Searcher) identifySuccessors(cur *JumpPoint) []*JumpPoint {
	var out []*JumpPoint
	for _, d := range s.expand(cur) {
		v := d.Vector()
		if neighbour, ok := s.graph.Lookup(cur.Pos.Add(v)); ok {
			if neighbour == s.start {
				continue
			}
			if neighbour.Parent != nil && neighbour.Cost < cur.Cost+v.Length() {
				continue
			}
		}

		jp := s.jump(cur.Pos, v, 0)
		if s.cancelled {
			return nil
		}
		improved := cur.recordSuccessor(d, jp)
		if jp == nil {
			continue
		}
		if s.withinGoal(jp.Pos) {
			s.goal = jp
			return []*JumpPoint{jp}
		}
		if improved {
			jp.Heuristic = jp.Pos.Dist(s.cfg.Goal)
			out = append(out, jp)
		}
	}
	return out
}

// expand lists the directions to jump along from cur.
func (s *Searcher) expand(cur *JumpPoint) []Direction {
	var out []Direction
	if s.cfg.Expansion == ExpandAll || !cur.HasDir {
		for i := 0; i < DirectionCount; i++ {
			d := Direction(i)
			if s.cache.IsReachable(cur.Pos, cur.Pos.Add(d.Vector())) {
				out = append(out, d)
			}
		}
		return out
	}

	g := geom(cur.ParentDir)
	parent := cur.Pos.Sub(cur.ParentDir.Vector())
	var seen [DirectionCount]bool
	for _, d := range g.componentDirs {
		seen[d] = true
		out = append(out, d)
	}
	for _, off := range s.forcedNeighbours(parent, cur.Pos) {
		d, _ := DirectionOf(off)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// jump advances from cur along v until it finds a jump point, the goal, an
// obstacle or the depth limit.
func (s *Searcher) jump(cur, v vec.Vec3, depth int) *JumpPoint {
	if depth >= s.cfg.MaxDepth || s.stopped() {
		return nil
	}
	s.maxDepth = max(s.maxDepth, depth+1)

	next := cur.Add(v)
	if !s.cache.IsReachable(cur, next) {
		return nil
	}
	if s.withinGoal(next) {
		return s.graph.Get(next)
	}
	if len(s.forcedNeighbours(cur, next)) > 0 {
		return s.graph.Get(next)
	}

	d, _ := DirectionOf(v)
	for _, c := range geom(d).components {
		if r := s.jump(next, c, depth+1); r != nil {
			if c == v {
				return r
			}
			return s.graph.Get(next)
		}
	}
	return nil
}

// forcedNeighbours returns the offsets from cur, entered from the adjacent
// cell parent, that cannot be reached at least as cheaply by a route avoiding
// cur. Those neighbours force cur to become a jump point.
func (s *Searcher) forcedNeighbours(parent, cur vec.Vec3) []vec.Vec3 {
	key := reachKey{parent, cur}
	if f, ok := s.forced[key]; ok {
		return f
	}

	d, ok := DirectionOf(cur.Sub(parent))
	if !ok {
		return nil
	}
	g := geom(d)
	back := d.Vector().Neg()

	pruned := make([]bool, len(g.forcedCandidates))
	for i, c := range g.forcedCandidates {
		if !s.cache.IsReachable(cur, cur.Add(c)) {
			pruned[i] = true
		}
	}

	for _, k := range g.keyNodes {
		keyPos := cur.Add(k)
		if !s.cache.IsReachable(parent, keyPos) {
			continue
		}
		for i, c := range g.forcedCandidates {
			if pruned[i] {
				continue
			}
			if c != k && !s.cache.IsReachable(keyPos, cur.Add(c)) {
				continue
			}
			if prunedByKey(back, k, c) {
				pruned[i] = true
			}
		}
	}

	var out []vec.Vec3
	for i, c := range g.forcedCandidates {
		if !pruned[i] {
			out = append(out, c)
		}
	}
	s.forced[key] = out
	return out
}

// prunedByKey compares reaching candidate c through key node k against going
// through the current cell, all as offsets from the current cell with back
// pointing at the parent. It reports whether the route through k dominates.
func prunedByKey(back, k, c vec.Vec3) bool {
	parentToKey := back.Dist(k)
	keyToCand := k.Dist(c)
	parentToCur := back.Length()
	curToCand := c.Length()

	viaKey := parentToKey + keyToCand
	viaCur := parentToCur + curToCand
	if math.Abs(viaKey-viaCur) < costEpsilon {
		if math.Abs(parentToKey-parentToCur) < costEpsilon {
			return keyToCand > curToCand
		}
		return parentToKey > parentToCur
	}
	return viaKey < viaCur
}

func (s *Searcher) walkable(p vec.Vec3) bool {
	ok, err := s.cfg.Oracle.IsWalkable(p)
	if err != nil {
		s.faults++
		s.log.Warn("可行走查詢失敗", zap.Stringer("pos", p), zap.Error(err))
		return false
	}
	return ok
}

func (s *Searcher) inSight(a, b vec.Vec3) bool {
	ok, err := s.cfg.Oracle.InSight(a, b)
	if err != nil {
		s.faults++
		s.log.Warn("視線查詢失敗", zap.Stringer("from", a), zap.Stringer("to", b), zap.Error(err))
		return false
	}
	return ok
}

func (s *Searcher) stats(res Result) Stats {
	return Stats{
		PathLength:          len(res.Path),
		Cost:                res.Cost,
		Found:               res.Found,
		Cancelled:           s.cancelled,
		MaxDepthReached:     s.maxDepth,
		ReachabilityQueries: s.cache.Queries(),
		OracleFaults:        s.cache.Faults() + s.faults,
		Expansions:          s.expansions,
		Nodes:               s.graph.Len(),
	}
}
