package jps

import "time"

// Stats describes a finished search. Nothing in the search reads them back.
type Stats struct {
	Elapsed             time.Duration
	PathLength          int
	Cost                float64
	Found               bool
	Cancelled           bool
	MaxDepthReached     int
	ReachabilityQueries int
	OracleFaults        int
	Expansions          int
	Nodes               int
}
