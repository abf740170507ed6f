package event

import (
	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
)

// PathRequested is emitted when a request is admitted to the queue.
type PathRequested struct {
	ID        int
	Requester uint64
	Map       string
	Start     vec.Vec3
	Goal      vec.Vec3
}

// PathReady is emitted when a search finished, whatever its outcome. Err is
// set when the search was cancelled or timed out.
type PathReady struct {
	ID        int
	Requester uint64
	Map       string
	Start     vec.Vec3
	Goal      vec.Vec3
	Path      []vec.Vec3
	Found     bool
	Stats     jps.Stats
	Err       error
}
