package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// PathRequest is one entry of a request batch. Unset optional fields fall back
// to the [pathfinder] configuration.
type PathRequest struct {
	Requester    uint64   `yaml:"requester"`
	Map          string   `yaml:"map"`
	Start        [3]int   `yaml:"start"`
	Goal         [3]int   `yaml:"goal"`
	GoalDistance *float64 `yaml:"goal_distance"`
	LineOfSight  *bool    `yaml:"line_of_sight"`
	MaxDepth     *int     `yaml:"max_depth"`
	Modes        []string `yaml:"modes"`
}

func (r PathRequest) StartPos() vec.Vec3 { return vec.New(r.Start[0], r.Start[1], r.Start[2]) }
func (r PathRequest) GoalPos() vec.Vec3  { return vec.New(r.Goal[0], r.Goal[1], r.Goal[2]) }

type requestFile struct {
	Requests []PathRequest `yaml:"requests"`
}

// LoadRequests loads a request batch from YAML.
func LoadRequests(path string) ([]PathRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests %s: %w", path, err)
	}
	var file requestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse requests: %w", err)
	}
	for i, r := range file.Requests {
		if r.GoalDistance != nil && *r.GoalDistance < 0 {
			return nil, fmt.Errorf("request %d: negative goal_distance", i)
		}
		if r.MaxDepth != nil && *r.MaxDepth < 0 {
			return nil, fmt.Errorf("request %d: negative max_depth", i)
		}
	}
	return file.Requests, nil
}
